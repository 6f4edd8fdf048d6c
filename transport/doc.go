// Package transport sends prepared request bodies to the service.
//
// Transport is the seam between request assembly and the network: it takes a
// method, a project-relative path and a JSON body, and returns the status and
// raw body. HTTP is the default implementation; Func adapts a plain function,
// which is how tests and custom stacks plug in.
//
// Transports do not retry, cache or interpret statuses. Check turns a
// non-success response into a *errors.RequestError.
package transport
