package course

// Topic is one quiz-able subset of a course.
type Topic struct {
	Name      string `json:"name"`
	Subtitle  string `json:"subtitle"`
	Icon      string `json:"icon"`
	BgColor   string `json:"bg_color"`
	TextColor string `json:"text_color"`
}

type Course struct {
	Title       string    `json:"title"`
	Level       string    `json:"level"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Colors      [2]string `json:"colors"`
	Topics      []Topic   `json:"topics"`
}

// HasTopic reports whether name is one of the course's topics.
func (c Course) HasTopic(name string) bool {
	for _, t := range c.Topics {
		if t.Name == name {
			return true
		}
	}
	return false
}

var catalog = []Course{
	{
		Title:       "Ejaan",
		Level:       "Beginner",
		Description: "Pelajari aturan ejaan bahasa Indonesia yang baik dan benar",
		Icon:        "✏️",
		Colors:      [2]string{"#FACC15", "#FB923C"},
		Topics: []Topic{
			{"Huruf Kapital", "Penggunaan Huruf Kapital", "📄", "#FFEDD5", "#EA580C"},
			{"Penulisan Kata", "Kata Dasar & Berimbuhan", "✏️", "#FCE7F3", "#DB2777"},
			{"Tanda Baca", "Titik, Koma, dll", "📐", "#DBEAFE", "#2563EB"},
			{"Gabungan Kata", "Kata Majemuk", "🔗", "#DCFCE7", "#16A34A"},
			{"Penulisan Angka", "Bilangan & Lambang", "🔢", "#F3E8FF", "#9333EA"},
			{"Singkatan", "Akronim & Abbreviasi", "📝", "#E0E7FF", "#4F46E5"},
		},
	},
	{
		Title:       "Tata Kata",
		Level:       "Advanced",
		Description: "Memahami jenis-jenis kata dan pembentukannya",
		Icon:        "📝",
		Colors:      [2]string{"#F472B6", "#EC4899"},
		Topics: []Topic{
			{"Pengantar Tata Kata", "Dasar Morfologi", "📚", "#FCE7F3", "#DB2777"},
			{"Kata Benda", "Nomina", "📦", "#F3E8FF", "#9333EA"},
			{"Kata Kerja", "Verba", "⚡", "#DBEAFE", "#2563EB"},
			{"Kata Sifat", "Adjektiva", "⭐", "#FEF9C3", "#CA8A04"},
		},
	},
	{
		Title:       "Tata Kalimat",
		Level:       "Intermediate",
		Description: "Pelajari struktur dan pola kalimat bahasa Indonesia",
		Icon:        "📖",
		Colors:      [2]string{"#60A5FA", "#6366F1"},
		Topics: []Topic{
			{"Pengantar Kalimat", "Dasar Sintaksis", "📖", "#DBEAFE", "#2563EB"},
			{"Pola Kalimat", "S-P-O-K", "📝", "#E0E7FF", "#4F46E5"},
			{"Kalimat Aktif", "Transitif", "➡️", "#DCFCE7", "#16A34A"},
			{"Kalimat Majemuk", "Setara & Bertingkat", "🔀", "#FCE7F3", "#DB2777"},
		},
	},
}

// All returns the catalog in display order.
func All() []Course {
	out := make([]Course, len(catalog))
	copy(out, catalog)
	return out
}

func Lookup(title string) (Course, bool) {
	for _, c := range catalog {
		if c.Title == title {
			return c, true
		}
	}
	return Course{}, false
}
