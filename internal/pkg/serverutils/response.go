package serverutils

type BaseResponse[T any] struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    T                 `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func SuccessResponse[T any](message string, data T) BaseResponse[T] {
	return BaseResponse[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func FailResponse(message string, fieldErrors map[string]string) BaseResponse[any] {
	return BaseResponse[any]{
		Success: false,
		Message: message,
		Errors:  fieldErrors,
	}
}
