// Package gateway implements the platform's single public entry point.
//
// The router dispatches inbound requests by the first path segment: a
// request to /{service}/{rest...} is forwarded to the backend base URL
// registered for service, with rest appended, and the backend's status and
// body are relayed back unchanged. The route table is built once at
// startup and is immutable for the process lifetime.
//
// Forwarding reuses the inbound method, body, and query parameters
// verbatim. Transport-framing headers are stripped so the rewritten
// request stays well-formed; everything else - the tenant identity headers
// in particular - passes through untouched.
//
// A configurable cross-origin allow-list is evaluated before any routing
// occurs. Preflight requests short-circuit with an empty success response;
// requests from origins outside the allow-list are rejected without ever
// reaching a backend. Requests without an Origin header always pass.
package gateway
