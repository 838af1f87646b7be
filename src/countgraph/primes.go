package countgraph

import "fmt"

// primesAtOrBelow returns n distinct primes working down from the given
// ceiling, largest first. Table sizes are kept prime so the shared hash
// value maps to independent slots in each table.
func primesAtOrBelow(ceiling uint64, n int) ([]uint64, error) {
	primes := make([]uint64, 0, n)
	candidate := ceiling
	if candidate > 2 && candidate%2 == 0 {
		candidate--
	}
	for len(primes) < n {
		if candidate < 2 {
			return nil, fmt.Errorf("table size %d too small for %d prime sized tables", ceiling, n)
		}
		if isPrime(candidate) {
			primes = append(primes, candidate)
		}
		if candidate == 2 {
			break
		}
		if candidate == 3 {
			candidate = 2
		} else {
			candidate -= 2
		}
	}
	if len(primes) < n {
		return nil, fmt.Errorf("table size %d too small for %d prime sized tables", ceiling, n)
	}
	return primes, nil
}

// isPrime is a simple trial division test, fine for the handful of calls made
// at construction time
func isPrime(n uint64) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for d := uint64(3); d*d <= n; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}
