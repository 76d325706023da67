// Package app is folio's composition root.
//
// Run wires the packages together in a fixed order:
//
//  1. Load configuration (config file, .env, environment).
//  2. Open the JSON log file under log_dir.
//  3. Open persistent storage and restore the saved theme and selection.
//     This happens before anything else writes to the store.
//  4. Create the store from the restored state and attach the writer that
//     saves it after every transition.
//  5. Seed the API list from the catalog.
//  6. Create the HTTP client, with the bearer token when one is configured.
//  7. Start the health poller. When health_api_id is set, each snapshot's
//     status is mirrored onto that catalog entry unless the catalog marks it
//     as under maintenance.
//  8. Start the devtools server when devtools_addr is set.
//  9. Run the terminal UI until it exits or the context is cancelled.
//
// Teardown runs in reverse: the poller and devtools server stop first, then
// storage and the log file are closed.
package app
