// Package rest provides access to the BYDFi REST API: public market data
// endpoints plus signed account and order endpoints. Signed requests carry a
// timestamp and an HMAC-SHA256 signature computed over the query string in
// parameter insertion order.
package rest
