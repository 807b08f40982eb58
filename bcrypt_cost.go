//go:build !race

package auth

const productionHashCost = 14

func passwordHashCost() int { return productionHashCost }
