package generator

// Audience is a predefined target-audience profile. The pain points
// and desires feed straight into the prompt, so they are written the
// way the copy should speak about them.
type Audience struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	PainPoints    []string `json:"pain_points"`
	Desires       []string `json:"desires"`
	LanguageStyle string   `json:"language_style"`
}

// Tone is a predefined writing voice.
type Tone struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Characteristics []string `json:"characteristics"`
	Examples        []string `json:"examples"`
}

// ContentType is a deliverable format with its own structural rules.
type ContentType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Framework is a copywriting structure.
type Framework struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	BestFor     string `json:"best_for"`
}

// Audiences lists the built-in audience profiles, default first.
var Audiences = []Audience{
	{
		ID:          "weight_loss_seeker",
		Name:        "Persoane care vor sa slabeasca",
		Description: "Au incercat diete fara rezultate durabile si cauta o metoda care chiar functioneaza",
		PainPoints: []string{
			"au incercat multe diete fara rezultate",
			"se simt judecati si demotivati",
			"nu au timp pentru planuri complicate",
		},
		Desires: []string{
			"rezultate vizibile si durabile",
			"un plan simplu de urmat",
			"sa se simta din nou bine in propriul corp",
		},
		LanguageStyle: "empatic, direct, fara jargon medical",
	},
	{
		ID:          "entrepreneurs",
		Name:        "Antreprenori si freelanceri",
		Description: "Isi conduc propria afacere si cauta crestere fara sa arda bugetul de marketing",
		PainPoints: []string{
			"bugete mici de promovare",
			"lipsa de timp pentru marketing",
			"rezultate greu de masurat",
		},
		Desires: []string{
			"clienti noi predictibil",
			"procese care merg fara ei",
			"crestere sustenabila",
		},
		LanguageStyle: "direct, orientat pe cifre si rezultate",
	},
	{
		ID:          "young_professionals",
		Name:        "Tineri profesionisti",
		Description: "25-35 de ani, activi online, atenti la timp si la imaginea personala",
		PainPoints: []string{
			"program incarcat",
			"prea multe optiuni, greu de ales",
			"neincredere in promisiuni de marketing",
		},
		Desires: []string{
			"solutii rapide si verificate",
			"statut si progres in cariera",
			"experiente autentice",
		},
		LanguageStyle: "modern, conversational, la obiect",
	},
	{
		ID:          "parents",
		Name:        "Parinti ocupati",
		Description: "Decid pentru toata familia si nu au timp de pierdut cu oferte neclare",
		PainPoints: []string{
			"timp foarte limitat",
			"grija pentru siguranta familiei",
			"bugete planificate strict",
		},
		Desires: []string{
			"ce e mai bun pentru copii",
			"economie de timp",
			"liniste si predictibilitate",
		},
		LanguageStyle: "cald, de incredere, concret",
	},
	{
		ID:          "local_business",
		Name:        "Clienti de afaceri locale",
		Description: "Cauta servicii in zona lor si aleg pe baza de recenzii si recomandari",
		PainPoints: []string{
			"experiente proaste cu furnizori locali",
			"preturi netransparente",
			"greu de gasit un furnizor de incredere",
		},
		Desires: []string{
			"un furnizor aproape de casa",
			"preturi clare",
			"dovezi de la alti clienti din zona",
		},
		LanguageStyle: "prietenos, local, cu dovezi sociale",
	},
}

// Tones lists the built-in writing voices, default first.
var Tones = []Tone{
	{
		ID:          "empathetic",
		Name:        "Empatic",
		Description: "Arata intelegere reala pentru problema cititorului inainte sa propui ceva",
		Characteristics: []string{
			"valideaza emotia cititorului",
			"vorbeste din experienta, nu de sus",
			"promite doar ce poate sustine",
		},
		Examples: []string{
			"Stii senzatia cand ai incercat tot si nimic nu tine?",
			"Nu e vina ta ca dietele clasice nu functioneaza.",
		},
	},
	{
		ID:          "professional",
		Name:        "Profesional",
		Description: "Serios si precis, potrivit pentru B2B si servicii cu valoare mare",
		Characteristics: []string{
			"date si cifre concrete",
			"fraze scurte, fara umplutura",
			"vocabular de business fara jargon inutil",
		},
		Examples: []string{
			"In 90 de zile, clientii nostri reduc costurile de achizitie cu 30%.",
			"Procesul are 3 pasi si un singur responsabil: noi.",
		},
	},
	{
		ID:          "friendly",
		Name:        "Prietenos",
		Description: "Conversational si relaxat, ca o recomandare de la un prieten",
		Characteristics: []string{
			"adresare directa la persoana a doua",
			"umor discret",
			"exemple din viata de zi cu zi",
		},
		Examples: []string{
			"Hai sa fim sinceri: nimeni nu citeste etichete la 7 dimineata.",
			"Ti-ar prinde bine o ora in plus pe zi? Noua da.",
		},
	},
	{
		ID:          "urgent",
		Name:        "Urgent",
		Description: "Impinge la actiune acum, cu urgenta reala, nu fabricata",
		Characteristics: []string{
			"termene si cantitati exacte",
			"consecinta clara a amanarii",
			"un singur CTA, repetat",
		},
		Examples: []string{
			"Au mai ramas 12 locuri pentru sesiunea din martie.",
			"Pretul creste luni la ora 12:00.",
		},
	},
	{
		ID:          "inspirational",
		Name:        "Inspirational",
		Description: "Pune accent pe transformare si pe versiunea mai buna a cititorului",
		Characteristics: []string{
			"povesti de transformare reale",
			"limbaj vizual si concret",
			"finalul arata primul pas, nu un vis vag",
		},
		Examples: []string{
			"Acum un an, Ana nu putea urca doua etaje. Duminica alearga primul ei semimaraton.",
			"Primul pas nu e spectaculos. E doar primul.",
		},
	},
}

// ContentTypes lists the supported formats, default first. The IDs
// key the structural instructions in templates.go.
var ContentTypes = []ContentType{
	{ID: "facebook_post", Name: "Facebook Post", Description: "Postare organica pentru feed, 100-250 cuvinte"},
	{ID: "instagram_caption", Name: "Instagram Caption", Description: "Caption cu hook, emojis strategice si hashtag-uri"},
	{ID: "facebook_ad", Name: "Facebook Ad", Description: "Text de reclama sub 125 cuvinte, un singur beneficiu"},
	{ID: "google_ad", Name: "Google Ad", Description: "Responsive Search Ad: 3 headline-uri si 2 descrieri"},
	{ID: "video_script", Name: "Video Script", Description: "Scenariu video de 60-90 secunde cu hook in primele 3 secunde"},
	{ID: "email", Name: "Email", Description: "Email de vanzare cu subiect, preview si un singur CTA"},
	{ID: "newsletter", Name: "Newsletter", Description: "Editie de newsletter cu continut, noutati si oferta"},
	{ID: "tiktok_script", Name: "TikTok Script", Description: "Scenariu scurt 15-60 secunde, energic"},
	{ID: "linkedin_post", Name: "LinkedIn Post", Description: "Postare profesionala cu insight si intrebare de discutie"},
	{ID: "landing_page", Name: "Landing Page", Description: "Pagina completa: hero, beneficii, proof, FAQ, CTA final"},
}

// Frameworks lists the supported copywriting structures.
var Frameworks = []Framework{
	{Name: "AIDA", Description: "Attention, Interest, Desire, Action", BestFor: "reclame si postari care trebuie sa convinga rapid"},
	{Name: "PAS", Description: "Problem, Agitate, Solve", BestFor: "audiente cu o durere clara si constienta"},
	{Name: "Benefit-Driven", Description: "Beneficiul principal primul, apoi dovezile", BestFor: "produse cu un avantaj evident fata de concurenta"},
	{Name: "Storytelling", Description: "Personaj, conflict, transformare, lectie", BestFor: "branduri personale si continut organic"},
	{Name: "Before-After-Bridge", Description: "Situatia de acum, situatia ideala, puntea dintre ele", BestFor: "servicii de transformare (fitness, educatie, consultanta)"},
	{Name: "QUEST", Description: "Qualify, Understand, Educate, Stimulate, Transition", BestFor: "continut educational care se incheie cu o oferta"},
}

// WordCounts maps the requested length hint to an instruction appended
// to the prompt. The empty hint and "normal" add nothing.
var WordCounts = map[string]string{
	"short":  "LUNGIME CERUTA: varianta scurta - aproximativ jumatate din lungimea standard a formatului.",
	"normal": "",
	"long":   "LUNGIME CERUTA: varianta extinsa - aproximativ dublul lungimii standard a formatului, fara umplutura.",
}

// AudienceByID returns the audience profile, falling back to the
// default when the id is unknown.
func AudienceByID(id string) Audience {
	for _, a := range Audiences {
		if a.ID == id {
			return a
		}
	}
	return Audiences[0]
}

// ToneByID returns the tone, falling back to the default.
func ToneByID(id string) Tone {
	for _, t := range Tones {
		if t.ID == id {
			return t
		}
	}
	return Tones[0]
}

// ContentTypeByID returns the content type, falling back to the
// default.
func ContentTypeByID(id string) ContentType {
	for _, ct := range ContentTypes {
		if ct.ID == id {
			return ct
		}
	}
	return ContentTypes[0]
}

// FrameworkByName returns the framework and whether it is built in.
func FrameworkByName(name string) (Framework, bool) {
	for _, f := range Frameworks {
		if f.Name == name {
			return f, true
		}
	}
	return Framework{}, false
}
