package ocr

// SamplePages picks which pages of an n-page document to recognize. Within
// budget every page is taken; over budget only the first head and last tail
// pages are, keeping their original 1-based numbers so downstream evidence
// references stay truthful.
func SamplePages(total, budget, head, tail int) []int {
	if total <= 0 {
		return nil
	}
	if budget <= 0 || total <= budget || head+tail >= total {
		pages := make([]int, total)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages
	}

	pages := make([]int, 0, head+tail)
	for i := 1; i <= head; i++ {
		pages = append(pages, i)
	}
	for i := total - tail + 1; i <= total; i++ {
		pages = append(pages, i)
	}
	return pages
}
