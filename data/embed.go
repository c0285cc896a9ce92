package data

import (
	_ "embed"
)

//go:embed ingredients.json
var IngredientsJSON []byte
