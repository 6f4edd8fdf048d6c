// Package graphql wraps the per-data-model GraphQL endpoint.
//
// Requests are checked for syntax and operation selection before they are
// sent; schema validation and execution happen on the service. Response
// errors are returned as a gqlerror.List.
package graphql
