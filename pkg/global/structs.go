package global

import "errors"

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Status bool              `json:"status"`
	Msg    string            `json:"msg,omitempty"`
	Data   interface{}       `json:"data,omitempty"`
	Total  *float64          `json:"total,omitempty"`
	Error  string            `json:"error,omitempty"`
	Errors []ValidationError `json:"errors,omitempty"`
}

func SuccessResponse(msg string, data interface{}) APIResponse {
	return APIResponse{
		Status: true,
		Msg:    msg,
		Data:   data,
	}
}

// WithTotal attaches a cart or order total to a success envelope.
func (r APIResponse) WithTotal(total float64) APIResponse {
	r.Total = &total
	return r
}

func ErrorResponse(message string, errors []ValidationError) APIResponse {
	return APIResponse{
		Status: false,
		Msg:    message,
		Errors: errors,
	}
}

// ErrorResponseFor builds the failure envelope for err. Internal and upstream
// failures use a generic message and expose the cause in the error field.
func ErrorResponseFor(err error) APIResponse {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return APIResponse{Status: false, Msg: "Something went wrong", Error: err.Error()}
	}

	switch appErr.Kind {
	case KindInternal, KindUpstream:
		return APIResponse{Status: false, Msg: "Something went wrong", Error: appErr.Error()}
	}

	resp := APIResponse{Status: false, Msg: appErr.Msg}
	if appErr.Field != "" {
		resp.Errors = []ValidationError{{Field: appErr.Field, Message: appErr.Msg, Code: appErr.Kind.String()}}
	}
	return resp
}
