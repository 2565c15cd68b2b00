// Package http provides HTTP handlers and middleware for the scheduling API.
//
// The router exposes the following endpoints:
//   - POST /login: issues a session token. Body: {"email","password"}. Response:
//     {"token","role","expires_at"} with token also surfaced via the
//     `X-Session-Token` header and a `session_token` cookie.
//   - DELETE /sessions/current: revokes the current session token extracted from
//     the Authorization header or session cookie. Returns 204 and clears the cookie.
//   - POST /presentations, GET /presentations?date=YYYY-MM-DD: schedule and list
//     presentation slots. Creation is administrator only and is rejected with 400
//     when any venue, examiner or student is already booked over the slot.
//   - POST /presentations/check-availability: probes a slot against all three
//     resource dimensions and reports each blocking booking.
//   - POST /presentations/suggest-slot: greedy first-fit slot suggestion for a
//     fresh presentation.
//   - POST /presentations/reschedule-request, GET (pending list),
//     POST .../decide, POST .../suggest-slot: reschedule request lifecycle. A
//     request is filed Pending and transitions exactly once to Approved or
//     Rejected; approval re-checks the target slot and auto-rejects when it has
//     been taken in the meantime.
//   - POST /timetables, PUT /timetables/{id}, GET /timetables/group/{ref}: weekly
//     group timetable management with duplicate, overlap and cross-timetable
//     conflict validation.
//   - POST /groups, GET /groups, GET /groups/{ref}: student group management.
//   - POST /students, POST /examiners, POST /venues, POST /modules: directory
//     records with sequence-assigned friendly codes.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
