// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

import "math/big"

// functions for Prime number calculations. Sizes of the unique subtables and of
// the operation cache are always prime.

func hasFactor(src int, n int) bool {
	return (src != n) && (src%n == 0)
}

func hasEasyFactors(src int) bool {
	return hasFactor(src, 3) || hasFactor(src, 5) || hasFactor(src, 7) || hasFactor(src, 11) || hasFactor(src, 13)
}

// bdd_prime_gte returns the smallest prime greater or equal to src.
func bdd_prime_gte(src int) int {
	if src <= 2 {
		return 2
	}
	if src%2 == 0 {
		src++
	}
	for {
		if hasEasyFactors(src) {
			src = src + 2
			continue
		}
		// ProbablyPrime is 100% accurate for inputs less than 2⁶⁴.
		if big.NewInt(int64(src)).ProbablyPrime(0) {
			return src
		}
		src = src + 2
	}
}
