package utils

// Label 记录一条结果“为什么出现在这里”：召回来源、命中的过滤条件、截断位置等。
// Value 与 Source 的语义由调用方决定，这里只约定合并规则。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / rerank ...
}

// MergeLabel 合并同名 Label，保留历史：
// - Value 以 '|' 累积
// - Source 以 ',' 累积
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}

// RecallLabel 返回标记召回来源的 Label。
func RecallLabel(source string) Label {
	return Label{Value: source, Source: "recall"}
}
