package models

// CriteriaConfig describes one discipline rule a class can lose points on.
// It only labels deductions; rankings never read it.
type CriteriaConfig struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MaxPoints int    `json:"maxPoints"`
	Type      string `json:"type"`
}

// Criteria categories used by the default seed
const (
	CriteriaTypeDiscipline = "discipline"
	CriteriaTypeHygiene    = "hygiene"
	CriteriaTypeStudy      = "study"
	CriteriaTypeUniform    = "uniform"
	CriteriaTypeOther      = "other"
)

// DefaultCriteria is seeded into an empty criteria table on first start
func DefaultCriteria() []CriteriaConfig {
	return []CriteriaConfig{
		{Name: "Đi học muộn", MaxPoints: 10, Type: CriteriaTypeDiscipline},
		{Name: "Không đeo khăn quàng", MaxPoints: 5, Type: CriteriaTypeUniform},
		{Name: "Sai đồng phục", MaxPoints: 5, Type: CriteriaTypeUniform},
		{Name: "Lớp học bẩn", MaxPoints: 10, Type: CriteriaTypeHygiene},
		{Name: "Xếp hàng lộn xộn", MaxPoints: 10, Type: CriteriaTypeDiscipline},
		{Name: "Nói chuyện trong giờ", MaxPoints: 10, Type: CriteriaTypeStudy},
		{Name: "Không thuộc bài", MaxPoints: 10, Type: CriteriaTypeStudy},
	}
}
