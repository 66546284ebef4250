package models

type LeaderboardItem struct {
	UserID string  `json:"user_id"`
	Score  float64 `json:"score"`
	Rank   int64   `json:"rank"`
}

type LeaderboardEntry struct {
	Rank     int64   `json:"rank"`
	UserID   string  `json:"user_id"`
	Name     string  `json:"name"`
	PhotoURL *string `json:"photo_url"`
	TotalXP  int     `json:"total_xp"`
	Level    int     `json:"level"`
}

type LeaderboardResponse struct {
	Period  string             `json:"period"`
	Entries []LeaderboardEntry `json:"entries"`
	Me      *LeaderboardEntry  `json:"me,omitempty"`
	Around  []LeaderboardEntry `json:"around,omitempty"`
}
