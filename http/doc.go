// Package http provides the HTTP API of filekeep.
//
// # Routes
//
//	GET    /file/buckets        list storage buckets
//	POST   /file/presigned-url  {fileName, fileType} -> {uploadUrl, filePath}
//	POST   /file/metadata       {filePath, fileName, mimeType} -> 201 record
//	GET    /file                ?prefix&limit&cursor -> {items, nextCursor}
//	GET    /file/{id}           {file, downloadUrl}
//	DELETE /file/{id}           204
//	GET    /healthz
//	GET    /metrics             when HandlerConfig.Metrics is set
//
// When HandlerConfig.Objects is set the server also stores object bytes for
// the local backend under /objects/{bucket}/{key}. GET and HEAD are public.
// PUT (overwrite) and POST (create only, 409 if the object exists) require a
// signed URL checked by HandlerConfig.Verifier.
//
// # Errors
//
// Errors are written as {"error": code, "message": msg}. Service errors map
// to status codes by sentinel:
//
//	filekeep.ErrNotFound      404
//	filekeep.ErrInvalidInput  400
//	filekeep.ErrUnauthorized  403
//	filekeep.ErrConflict      409
//	anything else             500
//
// # Usage
//
//	handler := http.NewHandler(&http.HandlerConfig{
//	    Objects:  provider.Objects,
//	    Verifier: provider.Verifier,
//	    Metrics:  http.NewMetrics(),
//	}, service)
//	server := &nethttp.Server{Addr: ":8080", Handler: handler.Router()}
package http
