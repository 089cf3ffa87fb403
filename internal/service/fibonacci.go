package service

// MaxFibInput caps the n actually computed by Fibonacci.
const MaxFibInput = 30

// FibResult carries the requested n and fib(min(n, MaxFibInput)).
type FibResult struct {
	N      int `json:"n"`
	Result int `json:"result"`
}

// Fib computes the nth Fibonacci number by plain recursion.
// The exponential cost is deliberate: the endpoint exists to burn CPU.
func Fib(n int) int {
	if n <= 1 {
		return n
	}
	return Fib(n-1) + Fib(n-2)
}

// Fibonacci clamps n to MaxFibInput and computes it. Negative n is rejected.
func Fibonacci(n int) (FibResult, error) {
	if n < 0 {
		return FibResult{}, &ValidationError{
			Field:   "n",
			Message: "must be a non-negative integer",
		}
	}
	return FibResult{
		N:      n,
		Result: Fib(min(n, MaxFibInput)),
	}, nil
}
