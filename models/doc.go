// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain and response types for the API.

# Domain Types

  - Submission: participantName, answers (JSON object), order, feedback, submittedAt

Answers are kept as raw JSON so the stored value is byte-for-byte what the
client sent (numbers keep their precision).

# Response Types

Every response carries an ok flag:

  - SubmitResponse: ok, id (relational sink only)
  - HealthResponse: ok
  - DiagResponse: ok, hasDbUrl, nowUtc, hasTable
  - ErrorResponse: ok=false, error

Client-facing error text is limited to MsgBadPayload and MsgServerError;
diagnostic failures are the one place an underlying message is returned.
*/
package models
