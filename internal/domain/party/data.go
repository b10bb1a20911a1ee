package party

import "github.com/foodchain/foodchain/internal/domain/product"

// Custody metadata recorded on a product as each stage takes it over.
// Values are per kind; unknown kinds get an empty set so custody never
// fails on metadata.

var storageParams = map[product.Kind]map[string]int{
	product.KindApple: {"humidity": 85, "temperature": 4, "storageDays": 30},
	product.KindMilk:  {"humidity": 60, "temperature": 3, "storageDays": 5},
	product.KindPork:  {"humidity": 75, "temperature": -18, "storageDays": 90},
}

var processorParams = map[product.Kind]map[string]int{
	product.KindApple: {"washCycles": 2, "sortingGrade": 1},
	product.KindMilk:  {"pasteurizationTemp": 72, "homogenized": 1},
	product.KindPork:  {"cuttingBatch": 12, "curingHours": 48},
}

var sellerParams = map[product.Kind]map[string]int{
	product.KindApple: {"unitsPerPack": 6, "shelfDays": 14},
	product.KindMilk:  {"litersPerPack": 1, "shelfDays": 7},
	product.KindPork:  {"gramsPerPack": 500, "shelfDays": 4},
}

// StorageParameters returns the storage custody metadata for a kind.
func StorageParameters(kind product.Kind) map[string]int {
	return lookupParams(storageParams, kind)
}

// ProcessorParameters returns the processing custody metadata for a kind.
func ProcessorParameters(kind product.Kind) map[string]int {
	return lookupParams(processorParams, kind)
}

// SellerParameters returns the packaging custody metadata for a kind.
func SellerParameters(kind product.Kind) map[string]int {
	return lookupParams(sellerParams, kind)
}

func lookupParams(table map[product.Kind]map[string]int, kind product.Kind) map[string]int {
	params, ok := table[kind]
	if !ok {
		return map[string]int{}
	}
	out := make(map[string]int, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
