// Package dms provides a client for the instance endpoints of a graph
// data-model service.
//
// The dms package simplifies talking to the service by:
//   - Assembling query, sync, search and aggregate requests with validating builders
//   - Modelling instance filters as a closed, JSON-encodable tree (package filter)
//   - Parsing responses defensively, tolerating missing and extra fields
//   - Polling sync endpoints as a Go iterator with resumable checkpoints
//   - Sending GraphQL queries to published data models
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//	    "os"
//
//	    "github.com/hugr-lab/dms-go"
//	    "github.com/hugr-lab/dms-go/filter"
//	    "github.com/hugr-lab/dms-go/query"
//	)
//
//	func main() {
//	    client, err := dms.NewClient(dms.ClientConfig{
//	        BaseURL: "https://api.example.com",
//	        Project: "plant",
//	        Tokens:  dms.StaticToken(os.Getenv("DMS_TOKEN")),
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    pump := filter.View("plant", "Pump", "v1")
//	    running, err := filter.NewBuilder().Equals(pump.Property("status"), "running").Build()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    req, err := query.NewBuilder().
//	        WithNodes("pumps", query.NodeQuery{View: pump, Filter: running, Limit: 50}).
//	        Select("pumps", pump, "status", "temperature").
//	        Build()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    res, err := client.Query(context.Background(), req)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    pumps, _ := query.DecodeItems[query.Node](res, "pumps")
//	    fmt.Println(len(pumps), "running pumps")
//	}
//
// # Sync Streams
//
// SyncStream polls the sync endpoint until the context is cancelled or an
// error occurs. Each batch carries a checkpoint that can be persisted and
// used to resume later:
//
//	for batch, err := range client.SyncStream(ctx, syncReq) {
//	    if err != nil {
//	        return err
//	    }
//	    apply(batch.Result)
//	    token, _ := batch.Checkpoint().Encode()
//	    save(token)
//	}
//
// # Errors
//
// Errors are classified by package errors. Builders and Validate methods
// return errors matching errors.ErrInvalidArgument; non-2xx responses return
// *errors.RequestError, which matches errors.ErrRequestFailed; malformed
// response bodies match errors.ErrDecode.
//
// # Configuration
//
// ClientConfig can be filled directly or loaded with LoadConfigFromEnv, which
// reads DMS_BASE_URL, DMS_PROJECT, DMS_TOKEN, DMS_SYNC_POLL_INTERVAL and
// DMS_COMPRESS_REQUESTS, optionally from a .env file.
//
// # Concurrency
//
// Client is safe for concurrent use. Builders are not and should be owned by
// one goroutine. Built requests are immutable once Build returns.
package dms
