package generator

var (
	domesticFirstNames = []string{"Ahmet", "Mehmet", "Can", "Burak", "Emre", "Yusuf", "Kerem", "Arda", "Oğuz", "Semih", "Mert", "Deniz", "Kaan", "Efe"}
	domesticSurnames   = []string{"Yılmaz", "Demir", "Kaya", "Çelik", "Yıldız", "Öztürk", "Aydın", "Özdemir", "Arslan", "Doğan", "Koç", "Kurt", "Şahin"}
	foreignFirstNames  = []string{"John", "Michael", "David", "Lucas", "Matteo", "Gabriel", "Leo", "Kevin", "Robert", "James"}
)

type opponent struct {
	name, short, primary, secondary string
}

var opponentPool = []opponent{
	{"Beşiktaş", "BJK", "#000000", "#ffffff"},
	{"Trabzonspor", "TS", "#800000", "#3bbce3"},
	{"Başakşehir", "IBFK", "#e36e26", "#1a2c5a"},
	{"Samsunspor", "SAM", "#cc0000", "#ffffff"},
	{"Kasımpaşa", "KAS", "#1a2c5a", "#ffffff"},
	{"Sivasspor", "SVS", "#cc0000", "#ffffff"},
	{"Göztepe", "GÖZ", "#ffd700", "#cc0000"},
	{"Antalyaspor", "ANT", "#cc0000", "#ffffff"},
}
