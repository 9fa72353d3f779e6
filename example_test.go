// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd_test

import (
	"fmt"
	"os"

	"github.com/dalzilio/mtbdd"
)

// This example shows the basic usage of the package: create a BDD, compute some
// expressions and output the result.
func Example_basic() {
	// Create a new BDD with 6 variables, 10 000 nodes and a cache size of 3 000
	// (initially).
	bdd, _ := mtbdd.New(6, mtbdd.Nodesize(10000), mtbdd.Cachesize(3000))
	// n1 is a set comprising the three variables {x2, x3, x5}. It can also be
	// interpreted as the Boolean expression: x2 & x3 & x5
	n1 := bdd.Makeset([]int{2, 3, 5})
	// n2 == x1 | !x3 | x4
	n2 := bdd.Or(bdd.Ithvar(1), bdd.NIthvar(3), bdd.Ithvar(4))
	// n3 == ∃ x2,x3,x5 . (n2 & x3)
	vars := bdd.NewAssoc(bdd.Scanset(n1), nil)
	n3 := bdd.RelProd(n2, bdd.Ithvar(3), vars)
	fmt.Printf("Number of sat. assignments: %s\n", bdd.Satcount(n3))
	fmt.Printf("Support: %v\n", bdd.SupportVars(n3))
	// Output:
	// Number of sat. assignments: 48
	// Support: [1 4]
}

// This example shows how to use multi-terminal leaves to compute the sum of
// two integer-valued functions.
func Example_mtbdd() {
	bdd, _ := mtbdd.New(2)
	leaf := func(v uint64) mtbdd.Node {
		return bdd.Terminal(mtbdd.Value{v, 0})
	}
	// f == x0 ? 3 : 1 and g == x1 ? 10 : 20
	f := bdd.Ite(bdd.Ithvar(0), leaf(3), leaf(1))
	g := bdd.Ite(bdd.Ithvar(1), leaf(10), leaf(20))
	sum := bdd.MTApply(f, g, func(x, y mtbdd.Node) mtbdd.Node {
		vx, _ := bdd.Value(x)
		vy, _ := bdd.Value(y)
		return bdd.Terminal(mtbdd.Value{vx[0] + vy[0], 0})
	})
	for _, v := range bdd.Leaves(sum) {
		fmt.Println(v[0])
	}
	// Unordered output:
	// 13
	// 23
	// 11
	// 21
}

// This example shows how to save a BDD and read it back in another BDD where
// variables are numbered differently.
func Example_dump() {
	src, _ := mtbdd.New(4)
	f := src.Or(src.And(src.Ithvar(0), src.Ithvar(1)), src.Ithvar(3))
	file, err := os.CreateTemp("", "dump")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.Remove(file.Name())
	if err := src.Dump(file, f, []int{0, 1, 3}); err != nil {
		fmt.Println(err)
		return
	}
	file.Seek(0, 0)
	dst, _ := mtbdd.New(3)
	g, err := dst.Undump(file, []int{2, 1, 0})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(dst.Satcount(g))
	// Output:
	// 5
}
