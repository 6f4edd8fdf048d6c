// Package query assembles query and sync requests and parses their responses.
//
// A request names one or more result sets in its "with" section. Node result
// sets are always scoped to a view: the node filter is hasData(view), AND-ed
// with the caller's filter when one is given. Edge result sets traverse from a
// previously named result set.
//
// Responses keep items as raw JSON per result set because their shape is
// chosen by the select section. Use DecodeItems to decode them into a caller
// type, and Result.HasMore / Result.Cursors to continue paging or syncing.
package query
