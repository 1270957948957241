package finance

import "time"

// WisdomQuote is a short reflection shown once per day.
type WisdomQuote struct {
	Text   string
	Source string
}

var wisdomQuotes = []WisdomQuote{
	{"Os planos bem elaborados levam à fartura.", "Provérbios 21:5"},
	{"O dinheiro ganho com desonestidade diminuirá.", "Provérbios 13:11"},
	{"Quem ama o dinheiro jamais terá o suficiente.", "Eclesiastes 5:10"},
	{"É melhor ter pouco com o temor do Senhor do que riqueza com inquietação.", "Provérbios 15:16"},
}

// DailyWisdom picks the day's quote. The pick is a stable hash of the ISO
// date so every surface shows the same quote all day.
func DailyWisdom(now time.Time) WisdomQuote {
	date := now.Format("2006-01-02")
	var hash int32
	for _, c := range date {
		hash = hash<<5 - hash + int32(c)
	}
	if hash < 0 {
		hash = -hash
	}
	return wisdomQuotes[int(hash)%len(wisdomQuotes)]
}
