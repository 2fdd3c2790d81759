package tenantcfg

// DeepMerge merges updates into base without mutating either. Maps merge
// key-by-key recursively; any other value in updates overwrites the base
// value, including slices. Keys unknown to the typed config model pass
// through untouched, which keeps stored documents forward-compatible.
func DeepMerge(base, updates map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(updates))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range updates {
		bm, bok := out[k].(map[string]any)
		um, uok := v.(map[string]any)
		if bok && uok {
			out[k] = DeepMerge(bm, um)
			continue
		}
		out[k] = v
	}
	return out
}
