// Package rest provides typed JSON helpers over httpclient:
//
//	client, _ := rest.New(httpclient.Config{BaseURL: "https://generativelanguage.googleapis.com"})
//	resp, err := rest.Post[generateResponse](ctx, client, path, req)
package rest
