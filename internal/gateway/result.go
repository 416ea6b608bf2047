package gateway

// Result единый конверт ответа шлюза: либо данные, либо строка ошибки.
// Вызывающий код никогда не разбирает типы ошибок.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func Fail[T any](message string) Result[T] {
	return Result[T]{Success: false, Error: message}
}

// Unwrap возвращает данные и признак успеха
func (r Result[T]) Unwrap() (T, bool) {
	return r.Data, r.Success
}
