package main

import (
	"crypto/tls"
	"net/http"
)

func insecureTransport() http.RoundTripper {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // local self-signed certs only
	return t
}
