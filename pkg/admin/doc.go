// Package admin provides the REST API administrators use to manage scrap
// pricing, vendors, and site content.
//
// Every privileged route sits behind the authorization gate: a feature gate
// from configuration, bearer-token verification against the auth project, and
// a role lookup that only admits users whose stored role is admin. The gate
// re-verifies on every request and holds no state.
//
// Responses use a uniform envelope: successes are {"success": true, ...} and
// failures are {"success": false, "error": "..."}. Upstream data-service
// messages pass through on 400s; everything unexpected is logged server-side
// and answered with a generic 500.
package admin
