package domain

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest - номер страницы (с нуля) и ее размер.
type PageRequest struct {
	Page int
	Size int
}

// Normalize зажимает размер в [1, MaxPageSize], а номер страницы в [0, ...).
func (p PageRequest) Normalize() PageRequest {
	if p.Size < 1 {
		p.Size = 1
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	if p.Page < 0 {
		p.Page = 0
	}
	return p
}

// Offset - смещение первой записи страницы
func (p PageRequest) Offset() int {
	n := p.Normalize()
	return n.Page * n.Size
}

func totalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
