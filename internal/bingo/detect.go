package bingo

import "howlo/internal/domain"

// матрица выполнения 5x5
type Grid [Size][Size]bool

type LineKind string

const (
	LineRow      LineKind = "row"
	LineColumn   LineKind = "column"
	LineDiagonal LineKind = "diagonal"
)

// Line - собранная линия. Для диагоналей index 0 = слева-сверху вниз-вправо, 1 = справа-сверху вниз-влево
type Line struct {
	Kind  LineKind `json:"kind"`
	Index int      `json:"index"`
}

// строит сетку по записям пользователя; порядок записей не важен
func BuildGrid(records []*domain.Accomplishment) Grid {
	var g Grid
	for _, r := range records {
		if r == nil {
			continue
		}
		slot, ok := Lookup(r.Challenge)
		if !ok {
			// UnmatchedChallengeIsIgnored
			continue
		}
		g[slot.Row][slot.Col] = true
	}
	g[FreeIndex/Size][FreeIndex%Size] = true
	return g
}

func (g Grid) Marked(s Slot) bool {
	return g[s.Row][s.Col]
}

// количество отмеченных клеток без учёта FREE
func (g Grid) Completed() int {
	n := 0
	for _, s := range RequiredSlots() {
		if g.Marked(s) {
			n++
		}
	}
	return n
}

// все собранные строки, столбцы и диагонали
func DetectLines(g Grid) []Line {
	var lines []Line

	for row := 0; row < Size; row++ {
		full := true
		for col := 0; col < Size; col++ {
			if !g[row][col] {
				full = false
				break
			}
		}
		if full {
			lines = append(lines, Line{Kind: LineRow, Index: row})
		}
	}

	for col := 0; col < Size; col++ {
		full := true
		for row := 0; row < Size; row++ {
			if !g[row][col] {
				full = false
				break
			}
		}
		if full {
			lines = append(lines, Line{Kind: LineColumn, Index: col})
		}
	}

	main, anti := true, true
	for i := 0; i < Size; i++ {
		if !g[i][i] {
			main = false
		}
		if !g[i][Size-1-i] {
			anti = false
		}
	}
	if main {
		lines = append(lines, Line{Kind: LineDiagonal, Index: 0})
	}
	if anti {
		lines = append(lines, Line{Kind: LineDiagonal, Index: 1})
	}

	return lines
}

// true если отмечены все требуемые клетки
func DetectFullBoard(g Grid, required []Slot) bool {
	for _, s := range required {
		if !g.Marked(s) {
			return false
		}
	}
	return true
}

// линии из after, которых не было в before
func NewLines(before, after []Line) []Line {
	seen := make(map[Line]bool, len(before))
	for _, l := range before {
		seen[l] = true
	}
	var added []Line
	for _, l := range after {
		if !seen[l] {
			added = append(added, l)
		}
	}
	return added
}

// Cell - клетка для отображения карточки
type Cell struct {
	Index  int    `json:"index"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Text   string `json:"text"`
	Free   bool   `json:"free"`
	Marked bool   `json:"marked"`
}

// Cells разворачивает сетку в 25 клеток row-major с текстом без разметки
func (g Grid) Cells() []Cell {
	cells := make([]Cell, 0, SlotCount)
	for i := 0; i < SlotCount; i++ {
		s, _ := SlotAt(i)
		cells = append(cells, Cell{
			Index:  s.Index,
			Row:    s.Row,
			Col:    s.Col,
			Text:   PlainText(s.Text),
			Free:   IsFree(s),
			Marked: g.Marked(s),
		})
	}
	return cells
}
