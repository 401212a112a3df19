// Package dataservice is the HTTP client for the remote data/identity
// projects admind administers.
//
// A Client wraps one project endpoint and speaks its REST dialect: row reads
// and writes under /rest/v1/{table} with select/filter/order/limit query
// parameters, and bearer-token verification under /auth/v1/user. Every
// request carries the project key in the apikey header; the Authorization
// header carries either the same key (privileged service clients) or a
// caller's JWT (bearer-scoped clients).
//
// Clients are stateless: no session persistence, no token refresh. Build them
// per call through the Factory, which resolves credentials from the
// configuration snapshot:
//
//	factory := dataservice.NewFactory(cfg)
//	client, err := factory.ServiceClient(config.ProjectVendor)
//	if err != nil {
//	    return err
//	}
//	var vendors []Vendor
//	err = client.Select(ctx, "vendors", dataservice.Query{Limit: 500}, &vendors)
//
// Non-2xx responses surface as *APIError carrying the status and the
// project's own error message.
package dataservice
