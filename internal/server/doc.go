// Package server provides HTTP routing, middleware and the handlers of the topsync service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] registers method patterns
// ("GET /top") on an [http.ServeMux], so unsupported methods receive 405 from the mux itself.
//
// [Middleware] wraps handlers; the first one added is the outermost. [NewRouter] installs [RequestID], [Logger] and
// [Recoverer] in that order.
//
// # Routes
//
//   - GET / : {"application": name}
//   - GET /login : 302 to the authorize page, the action travels as the OAuth state
//   - GET /callback : token exchange plus action dispatch, see [CallbackHandler]
//   - GET /top : normalized top items, 400 on bad parameters, 502 on upstream failure
//   - POST /createplaylist : replace a playlist by name, 400 on bad parameters, 502 on upstream failure
//
// The callback keeps its plain text contract: authorization, missing action and token exchange failures are all
// reported with status 200. Only a failed playlist build returns 500.
//
// # CLI OAuth Handler
//
// [OAuthHandler] serves the callback for the auth command. It validates the state it generated, exchanges the code
// and sends the token through a channel. It only processes one callback.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
