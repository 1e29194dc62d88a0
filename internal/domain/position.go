package domain

// Position represents a holding of a single asset inside an account
// Quantity is not validated: zero and negative (short) quantities are allowed
type Position struct {
	AssetID  string
	Quantity int64
}

// AccountPosition groups the positions held by one account
type AccountPosition struct {
	AccountID string
	Positions []Position
}

// DistinctAssetIDs returns every asset ID referenced by the given account positions,
// deduplicated and in first-seen order
func DistinctAssetIDs(accountPositions []AccountPosition) []string {
	seen := make(map[string]struct{})
	assetIDs := make([]string, 0)

	for _, ap := range accountPositions {
		for _, position := range ap.Positions {
			if _, ok := seen[position.AssetID]; ok {
				continue
			}
			seen[position.AssetID] = struct{}{}
			assetIDs = append(assetIDs, position.AssetID)
		}
	}

	return assetIDs
}
