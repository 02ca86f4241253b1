// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the survey intake API.

# Handler Types

  - SubmitHandler: Validates and stores submissions
  - DiagHandler: Reports database reachability
  - Health: Liveness probe

Handlers are created via constructor functions that accept their
dependencies:

	submitHandler := handlers.NewSubmitHandler(sink, strict)
	diagHandler := handlers.NewDiagHandler(diagnoser)

# Submissions

	POST /submit → Submit

Strict mode (database configured) requires participantName, an answers
object and an order array; participantName is trimmed, feedback defaults
to "" and submittedAt to the receipt time. Without a database, any JSON
object is appended to the responses file with timestamp and ip added.

Responses:

	200 {"ok":true}            file sink
	200 {"ok":true,"id":N}     database sink
	400 {"ok":false,"error":"Bad payload"}
	500 {"ok":false,"error":"Server error"}

Nothing is written for a 400. Storage errors are logged; their text never
reaches the client.

# Diagnostics

	GET /__diag → Diag

Returns hasDbUrl, the database's UTC time and "responses" when the table
exists. Without a database both values are null. A failing probe returns
500 with the underlying message.
*/
package handlers
