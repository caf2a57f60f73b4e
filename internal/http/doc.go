// Package http exposes the interview lifecycle over JSON.
//
// Recruiter and service routes require an HS256 bearer token (RequireSession):
//   - POST /interviews, GET /interviews?status=a,b&candidate_id=...
//   - GET /interviews/{id}, GET /interviews/{id}/history
//   - PUT /interviews/{id}/config, POST /interviews/{id}/questions
//   - POST /interviews/{id}/ready: returns the access grant; the raw token is
//     only ever present in this response and in the invite response.
//   - POST|PUT /interviews/{id}/schedule, POST /interviews/{id}/invite
//   - POST /interviews/{id}/cancel, POST /interviews/{id}/complete
//   - PUT /interviews/{id}/decision
//
// Candidate routes authenticate with the access token in the X-Access-Token
// header or the token query parameter:
//   - GET /sessions/{id}, PUT /sessions/{id}/precheck
//   - POST /sessions/{id}/admit, POST /sessions/{id}/monitoring
//
// Public routes: GET|HEAD /readiness/ping (204, used by the latency probe),
// GET /healthz and GET /metrics.
//
// Errors share one body, {"error_code","message","class","errors"}, where
// class tells clients whether retrying can help.
package http
