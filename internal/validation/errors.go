package validation

// Locations reported in FieldError.Location.
const (
	LocationBody   = "body"
	LocationParams = "params"
)

// Messages produced by the product rules.
const (
	MsgInvalidID        = "Invalid ID"
	MsgNameEmpty        = "Name field can't be empty"
	MsgNameTooLong      = "Name can't exceed 100 characters"
	MsgPriceNotNumeric  = "Invalid value"
	MsgPriceEmpty       = "Price field can't be empty"
	MsgPriceNotPositive = "Invalid price"
	MsgInvalidBody      = "Invalid request body"
)

// FieldError describes one failed check. Value is omitted when the field
// was not sent at all.
type FieldError struct {
	Type     string      `json:"type"`
	Value    interface{} `json:"value,omitempty"`
	Msg      string      `json:"msg"`
	Path     string      `json:"path,omitempty"`
	Location string      `json:"location"`
}

// Errors is the ordered list of failures for a single request.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation passed"
	}
	if len(e) == 1 {
		return e[0].Path + ": " + e[0].Msg
	}
	return e[0].Path + ": " + e[0].Msg + " (and more)"
}

// InvalidBody is reported when the request body is not a JSON object.
func InvalidBody() Errors {
	return Errors{{Type: "body", Msg: MsgInvalidBody, Location: LocationBody}}
}
