// Package httpapi exposes the HTTP API layer of the marketplace.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tokenbay/marketplace-backend/internal/domain"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message, Details: details})
}

// writeDomainError maps marketplace precondition failures to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var notOwner *domain.NotAnOwnerError
	var notListed *domain.NotListedError
	var priceNotMet *domain.PriceNotMetError

	switch {
	case errors.Is(err, domain.ErrPriceMustBeAboveZero):
		WriteJSONError(w, http.StatusBadRequest, "price_must_be_above_zero", err.Error())
	case errors.As(err, &notOwner):
		WriteJSONError(w, http.StatusForbidden, "not_an_owner", err.Error())
	case errors.Is(err, domain.ErrNotApprovedForMarketplace):
		WriteJSONError(w, http.StatusForbidden, "not_approved_for_marketplace", err.Error())
	case errors.As(err, &notListed):
		WriteJSONError(w, http.StatusNotFound, "not_listed", err.Error())
	case errors.As(err, &priceNotMet):
		WriteJSONError(w, http.StatusPaymentRequired, "price_not_met", err.Error())
	case errors.Is(err, domain.ErrNoProceeds):
		WriteJSONError(w, http.StatusConflict, "no_proceeds", err.Error())
	case errors.Is(err, domain.ErrTransferFailed):
		WriteJSONError(w, http.StatusBadGateway, "transfer_failed", err.Error())
	default:
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
