package validation

// ItemRequest is the payload for POST and PUT /item/:name. The item name
// comes from the route, so price is the only body field.
type ItemRequest struct {
	Price *float64 `json:"price" validate:"required"` // pointer so an explicit 0 still passes required
}
