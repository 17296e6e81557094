package httpapi

import "net/http"

// NewRouter registers HTTP routes and returns the handler with middleware.
// authToken guards every route except the health check and the event feed.
func NewRouter(api *API, authToken string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /listings", api.postListingHandler)
	mux.HandleFunc("GET /listings/{contract}/{tokenID}", api.getListingHandler)
	mux.HandleFunc("PUT /listings/{contract}/{tokenID}", api.putListingHandler)
	mux.HandleFunc("DELETE /listings/{contract}/{tokenID}", api.deleteListingHandler)
	mux.HandleFunc("POST /purchases", api.postPurchaseHandler)
	mux.HandleFunc("POST /withdrawals", api.postWithdrawalHandler)
	mux.HandleFunc("GET /proceeds/{address}", api.getProceedsHandler)

	if api.Custody != nil {
		mux.HandleFunc("POST /assets/mint", api.postMintHandler)
		mux.HandleFunc("POST /assets/approvals", api.postApprovalHandler)
		mux.HandleFunc("GET /assets/{contract}/{tokenID}/owner", api.getOwnerHandler)
	}

	guarded := WithAuth(authToken, mux)

	outer := http.NewServeMux()
	outer.HandleFunc("GET /healthz", api.healthHandler)
	if api.Feed != nil {
		outer.HandleFunc("GET /ws", api.Feed.HandleWS)
	}
	outer.Handle("/", guarded)

	return WithRequestID(WithLogging(outer))
}
