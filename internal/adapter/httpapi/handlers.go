package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tokenbay/marketplace-backend/internal/adapter/custody"
	"github.com/tokenbay/marketplace-backend/internal/adapter/feed"
	"github.com/tokenbay/marketplace-backend/internal/domain"
	"github.com/tokenbay/marketplace-backend/internal/usecase/marketplace"
)

// API holds the handler dependencies.
type API struct {
	Market *marketplace.Service
	Feed   *feed.Hub

	// Custody is the in-process asset registry. When set, the API exposes
	// minting and approval endpoints so the marketplace is exercisable
	// end to end without an external registry.
	Custody *custody.Registry
}

// NewAPI creates the HTTP API.
func NewAPI(market *marketplace.Service, hub *feed.Hub, registry *custody.Registry) *API {
	return &API{Market: market, Feed: hub, Custody: registry}
}

type listingResponse struct {
	AssetContract string `json:"asset_contract"`
	TokenID       string `json:"token_id"`
	Price         string `json:"price"`
	Seller        string `json:"seller"`
}

func toListingResponse(l domain.Listing) listingResponse {
	return listingResponse{
		AssetContract: string(l.AssetContract),
		TokenID:       l.TokenID,
		Price:         l.Price.String(),
		Seller:        string(l.Seller),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON decodes a strict JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func parseAmount(w http.ResponseWriter, field, raw string) (decimal.Decimal, bool) {
	if raw == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", field+" is required")
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", field+" is not a valid amount")
		return decimal.Zero, false
	}
	return amount, true
}

func (a *API) postListingHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AssetContract string `json:"asset_contract"`
		TokenID       string `json:"token_id"`
		Price         string `json:"price"`
		Seller        string `json:"seller"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.AssetContract == "" || req.TokenID == "" || req.Seller == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "asset_contract, token_id, and seller are required")
		return
	}
	price, ok := parseAmount(w, "price", req.Price)
	if !ok {
		return
	}

	listing, err := a.Market.ListItem(r.Context(), marketplace.ListItemInput{
		AssetContract: domain.Address(req.AssetContract),
		TokenID:       req.TokenID,
		Price:         price,
		Caller:        domain.Address(req.Seller),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toListingResponse(listing))
}

func (a *API) getListingHandler(w http.ResponseWriter, r *http.Request) {
	contract := r.PathValue("contract")
	tokenID := r.PathValue("tokenID")

	listing, err := a.Market.GetListing(r.Context(), domain.Address(contract), tokenID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponse(listing))
}

func (a *API) putListingHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Price  string `json:"price"`
		Caller string `json:"caller"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Caller == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "caller is required")
		return
	}
	price, ok := parseAmount(w, "price", req.Price)
	if !ok {
		return
	}

	listing, err := a.Market.UpdateListing(r.Context(), marketplace.UpdateListingInput{
		AssetContract: domain.Address(r.PathValue("contract")),
		TokenID:       r.PathValue("tokenID"),
		NewPrice:      price,
		Caller:        domain.Address(req.Caller),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponse(listing))
}

func (a *API) deleteListingHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller string `json:"caller"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Caller == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "caller is required")
		return
	}

	err := a.Market.CancelListing(r.Context(),
		domain.Address(r.PathValue("contract")), r.PathValue("tokenID"), domain.Address(req.Caller))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "canceled"})
}

func (a *API) postPurchaseHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AssetContract string `json:"asset_contract"`
		TokenID       string `json:"token_id"`
		Buyer         string `json:"buyer"`
		PaidAmount    string `json:"paid_amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.AssetContract == "" || req.TokenID == "" || req.Buyer == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "asset_contract, token_id, and buyer are required")
		return
	}
	paid, ok := parseAmount(w, "paid_amount", req.PaidAmount)
	if !ok {
		return
	}

	sold, err := a.Market.BuyItem(r.Context(), marketplace.BuyItemInput{
		AssetContract: domain.Address(req.AssetContract),
		TokenID:       req.TokenID,
		Caller:        domain.Address(req.Buyer),
		PaidAmount:    paid,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"asset_contract": string(sold.AssetContract),
		"token_id":       sold.TokenID,
		"price":          sold.Price.String(),
		"buyer":          req.Buyer,
	})
}

func (a *API) postWithdrawalHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller string `json:"caller"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Caller == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "caller is required")
		return
	}

	amount, err := a.Market.WithdrawProceeds(r.Context(), domain.Address(req.Caller))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"owner":  req.Caller,
		"amount": amount.String(),
	})
}

func (a *API) getProceedsHandler(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("address")

	amount, err := a.Market.GetProceeds(r.Context(), domain.Address(owner))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"owner":  owner,
		"amount": amount.String(),
	})
}

func (a *API) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) postMintHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AssetContract string `json:"asset_contract"`
		TokenID       string `json:"token_id"`
		Owner         string `json:"owner"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.AssetContract == "" || req.TokenID == "" || req.Owner == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "asset_contract, token_id, and owner are required")
		return
	}

	err := a.Custody.Mint(r.Context(),
		domain.Address(req.AssetContract), req.TokenID, domain.Address(req.Owner))
	if err != nil {
		WriteJSONError(w, http.StatusConflict, "mint_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "minted"})
}

func (a *API) postApprovalHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AssetContract string `json:"asset_contract"`
		TokenID       string `json:"token_id"`
		Caller        string `json:"caller"`
		Spender       string `json:"spender"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.AssetContract == "" || req.TokenID == "" || req.Caller == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "asset_contract, token_id, and caller are required")
		return
	}

	// Default the spender to the marketplace operator.
	spender := domain.Address(req.Spender)
	if spender == "" {
		spender = a.Market.Operator
	}

	err := a.Custody.Approve(r.Context(),
		domain.Address(req.AssetContract), req.TokenID, domain.Address(req.Caller), spender)
	if err != nil {
		WriteJSONError(w, http.StatusForbidden, "approval_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

func (a *API) getOwnerHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := a.Custody.OwnerOf(r.Context(),
		domain.Address(r.PathValue("contract")), r.PathValue("tokenID"))
	if err != nil {
		WriteJSONError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"owner": string(owner)})
}
