// Package server serves the gallery over HTTP.
//
// # Routing
//
// [BasicRouter] wraps [http.ServeMux]. Routes use the mux pattern syntax with a method prefix,
// so "GET /api/image/{id}" answers 405 for other methods and exposes the id through
// [http.Request.PathValue]. [Middleware] is applied in reverse order (last added wraps first).
//
// A [Handler] bundles an [http.Handler] with the patterns it serves so a group of endpoints
// can be registered in one call. [API], [ScanHandler] and [UploadHandler] serve:
//
//	GET    /api/categories
//	GET    /api/images/{category}?page&per_page&search&sort&view_mode
//	GET    /api/image/{id}
//	DELETE /api/images/{id}
//	GET    /uploads/{id}/{name}
//	POST   /api/admin/scan/{category}
//	GET    /api/admin/scan
//	POST   /api/admin/upload/{category}  (multipart "file" or "images[]")
//
// Errors are JSON objects with an "error" key. Missing categories and images map to 404,
// invalid sort, view mode or arguments to 400, a scan requested while another runs to 409,
// and a file that is not a supported image to 415.
//
// # Lifecycle
//
// [Server.Run] serves until its context is cancelled and then drains in-flight requests
// for at most [ShutdownTimeout].
package server
