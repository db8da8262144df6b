package generator

import (
	"fmt"
	"strings"
)

// SystemPrompt is the base instruction sent with every generation.
// Output language is Romanian by design; the tool targets Romanian
// marketing audiences.
const SystemPrompt = `Ești un copywriter profesionist cu 10 ani de experiență în marketing digital si psihologie aplicata.

DE CE UN COPY MERGE SI ALTUL NU:
- Copy care MERGE: vorbeste direct despre problema, ofera solutie concreta, include proof (rezultate, numere), CTA clar
- Copy care NU MERGE: vorbeste vag, foloseste "noi" in loc de "tu", promite fara proof, e agresiv de vanzari

REGULI STRICTE:
1. Scrie EXCLUSIV in limba romana, FARA EMOJIS
2. Urmeaza EXACT structura ceruta in prompt
3. Fii specific si concret - evita generalitati
4. Vorbeste la persoana a doua (TU), nu la persoana intai (NOI)
5. Adreseaza direct problema audientei
6. Foloseste storytelling si proof (rezultate, testimoniale)
7. CTA-uri clare si actionabile
8. Evita: "Nostra", "vrem sa va spunem", "exista o solutie", "nu mai asteptati" - fii direct
9. Nu folosi cuvinte de umplere sau repetari inutile
10. Fii autentic, nu agresiv de vanzari
11. STRUCTURA clara cu sectiuni marcate

DE CE EVITAM ANUMITE CUVINTE:
- "Nostra/Noi" -> pare corporativ si distant, nu personal
- "Exista o solutie" -> generic si nespecific
- "Nu mai asteptati" -> cliseu de marketing agresiv
- "Vrem sa va spunem" -> pierde timpul cititorului
- "Calitate/Premium" -> cuvinte goale fara substanta

FOCUSEAZA PE:
- Benefits concrete, nu features tehnice
- Emotii si transformation reala
- Social proof cu numere si rezultate verificabile
- Clear next steps pentru cititor`

// frameworkInstructions holds the structural rules per framework,
// keyed by framework name.
var frameworkInstructions = map[string]string{
	"AIDA": `AIDA Framework:
1. ATTENTION: Start with a powerful hook that grabs attention immediately
2. INTEREST: Build interest by highlighting the problem or opportunity
3. DESIRE: Create desire by showing benefits and transformation
4. ACTION: End with a strong, clear call-to-action`,

	"PAS": `PAS Framework:
1. PROBLEM: Clearly identify and agitate the pain point
2. AGITATE: Intensify the problem, make it feel urgent
3. SOLVE: Present your solution as the perfect answer`,

	"Benefit-Driven": `Benefit-Driven Framework:
- Lead with the main benefit, not features
- Use "so that" technique: Feature -> Benefit -> Ultimate result
- Focus on emotional and practical benefits
- Show transformation`,

	"Storytelling": `Storytelling Framework:
- Start with a relatable character/situation
- Present a conflict or challenge
- Show the journey/transformation
- End with resolution and lesson
- Make it emotional and authentic`,

	"Before-After-Bridge": `Before-After-Bridge Framework:
1. BEFORE: Describe the current painful situation
2. AFTER: Paint the picture of the ideal outcome
3. BRIDGE: Show how to get from Before to After`,

	"QUEST": `QUEST Framework:
1. Qualify: Address the right person
2. Understand: Show empathy for their situation
3. Educate: Provide valuable information
4. Stimulate: Create excitement/urgency
5. Transition: Move to call-to-action`,
}

// contentTypeInstructions holds the structural rules per content type,
// keyed by content type id.
var contentTypeInstructions = map[string]string{
	"facebook_post": `STRUCTURA OBLIGATORIE pentru Facebook Post:

HOOK (primele 2 randuri - inainte de "Vezi mai mult"):
- O propozitie puternica care opreste scroll-ul
- Foloseste emotie, curiozitate sau contrarianism

CORPUL POSTARII:
- 3-5 paragrafe scurte cu linii goale intre ele
- Adreseaza direct pain point-ul audientei
- Include beneficii concrete, nu doar features
- Foloseste storytelling sau social proof
- FARA EMOJIS - par neprofesional in copy serios

CTA (Call-to-Action):
- O intrebare care provoaca comentarii SAU
- Un indemn clar sa dea like/share/save

LUNGIME: 100-250 cuvinte
TON: Conversational, autentic, fara jargon`,

	"instagram_caption": `STRUCTURA OBLIGATORIE pentru Instagram Caption:

PRIMA LINIE (HOOK):
- Text care capteaza atentia imediat
- Se vede in feed fara sa apese "mai mult"

CORPUL CAPTION-ULUI:
- Mini-poveste sau valoare educativa
- Foloseste bullet points pentru lizibilitate
- Include emojis strategice (3-5)
- Adauga spacing pentru scanare usoara

CTA:
- Indeamna sa comenteze, salveze sau tag-uiasca pe cineva

HASHTAG-URI (15-30) la final, relevante pentru subiect

LUNGIME: 100-220 cuvinte`,

	"facebook_ad": `STRUCTURA OBLIGATORIE pentru Facebook Ad:

PATTERN INTERRUPT (Headline):
- O propozitie care sparge pattern-ul
- Ex: "STOP! Ai incercat 5 diete si nimic nu a functionat?"

PROBLEMA + AGITATIE:
- Identifica problema clar
- Amplifica durerea/emotia (2-3 propozitii)

SOLUTIE + BENEFICII:
- Prezinta solutia ca salvare
- 2-3 beneficii concrete cu rezultate

SOCIAL PROOF:
- Statistica, testimonial sau garantie

CTA PUTERNIC:
- Buton text clar: "Afla mai mult", "Inscrie-te acum", "Obtine oferta"
- Urgenta sau scaritate (optional)

LUNGIME: Sub 125 cuvinte (primary text)
FOCUS: Un singur beneficiu principal`,

	"google_ad": `STRUCTURA OBLIGATORIE pentru Google Ad (Responsive Search Ad):

HEADLINE 1 (max 30 caractere):
[Keyword principal] + [Beneficiu principal]

HEADLINE 2 (max 30 caractere):
[Differentiator] sau [Social proof]

HEADLINE 3 (max 30 caractere):
[CTA clar]

DESCRIERE 1 (max 90 caractere):
[Value proposition detaliat]

DESCRIERE 2 (max 90 caractere):
[Urgency/CTA secundar]

FORMAT FINAL:
Headline 1 | Headline 2 | Headline 3
Descriere 1
Descriere 2`,

	"video_script": `STRUCTURA OBLIGATORIE pentru Video Script (60-90 secunde):

SECUNDA 0-3 (HOOK):
[Text pe ecran + voce]
- O propozitie care opreste scroll-ul imediat

SECUNDA 3-15 (PROBLEMA):
[Voce off + imagini relevante]
- Descrie problema audientei
- Agiteaza durerea ("Stii cum e sa...")

SECUNDA 15-45 (SOLUTIE):
[Demonstratie sau explicatie]
- Prezinta solutia pas cu pas
- Arata beneficiile
- Include proof (rezultate, testimoniale)

SECUNDA 45-60 (CTA):
[Text pe ecran + voce clara]
- Indemn puternic la actiune

NOTA: Scrie pentru vorbit, nu pentru citit. Propozitii scurte, cuvinte simple.`,

	"email": `STRUCTURA OBLIGATORIE pentru Email:

SUBIECT (max 50 caractere):
- Curiosity gap sau benefit clar
- Evita spam words: "gratuit", "castiga", "!!!"

PREVIEW TEXT (max 90 caractere):
- Continuarea subiectului, context sau urgency

SALUT:
- Personalizat daca e posibil

PARAGRAF 1 - PROBLEMA:
- Adreseaza pain point-ul direct, cu empatie

PARAGRAF 2 - SOLUTIE:
- Prezinta solutia ta, 2-3 beneficii principale

PARAGRAF 3 - PROOF:
- Rezultate, testimoniale, statistici

CTA:
- Un singur buton/link clar

SIGN-OFF:
- Profesional dar prietenos, P.S. cu un mic hook (optional)

LUNGIME: 150-300 cuvinte`,

	"newsletter": `STRUCTURA OBLIGATORIE pentru Newsletter:

SUBIECT + PREVIEW TEXT:
- Subiect catchy + preview care completeaza

HEADER:
- Titlu newsletter, data/editia

SECTIUNEA 1 - CONTINUT PRINCIPAL (40%):
- Articol sau tips valoros, 2-3 paragrafe cu formatare

SECTIUNEA 2 - NEWS/UPDATE (20%):
- Stiri scurte sau anunturi, bullet points pentru scanare

SECTIUNEA 3 - OFERTA/CTA (30%):
- Promotie sau produs recomandat, beneficii clare + CTA vizibil

FOOTER:
- Link-uri sociale, unsubscribe, contact

LUNGIME: 500-800 cuvinte
FORMATARE: Headers, bullet points, bold pentru scanare rapida`,

	"tiktok_script": `STRUCTURA OBLIGATORIE pentru TikTok Script (15-60 secunde):

SECUNDA 0-1 (HOOK INSTANT):
[Text pe ecran mare + expresie faciala]

SECUNDA 1-5 (SETUP):
[Voce rapida, energica]
- Context rapid, "POV: ..."

SECUNDA 5-15 (REVELATIE):
[Show, don't tell]
- Demonstratie sau tranzitie, text on-screen cu puncte cheie

SECUNDA 15-45 (CONTINUT):
[Fast-paced cuts]
- Tips sau steps rapide, engage cu camera

SECUNDA 45-60 (CTA VIRAL):
- "Follow pentru partea 2", "Comenteaza 'DA'", "Save pentru mai tarziu"

TON: Energetic, autentic, ca si cum vorbesti cu un prieten
LUNGIME: 40-150 cuvinte`,

	"linkedin_post": `STRUCTURA OBLIGATORIE pentru LinkedIn Post:

LINIA 1 (HOOK):
- Insight, statistica sau inceput de poveste

PARAGRAF 2-3 (DEZVOLTARE):
- Povestea sau contextul, linii goale pentru lizibilitate, autenticitate

PARAGRAF 4 (LECTIE/INSIGHT):
- Morala povestii, un lesson practic sau un framework simplu

PARAGRAF 5 (CTA):
- Intrebare care provoaca discutie

HASHTAG-URI (3-5) la final

LUNGIME: 150-300 cuvinte
TON: Profesional dar personal, ca o conversatie la cafea`,

	"landing_page": `STRUCTURA OBLIGATORIE pentru Landing Page:

HERO SECTION (Above the fold):
- Headline principal: benefit clar si specific
- Subheadline: suporta headline-ul cu context
- CTA buton: text actiune clar

PROBLEMA + SOLUTIE:
- Identifica problema audientei
- Prezinta solutia ca unica optiune viabila

BENEFICII (3-5):
- Fiecare cu titlu + descriere scurta, focus pe outcomes

SOCIAL PROOF:
- Testimoniale cu nume si rezultate
- Statistici concrete

CUM FUNCTIONEAZA (3 pasi)

FAQ (3-5 intrebari):
- Obiectii comune tratate direct

CTA FINAL + URGENTA:
- Oferta limitata sau bonus, formular simplu sau buton clar

LUNGIME: 1000-2000 cuvinte`,
}

// principlesSection is the shared persuasion-psychology block appended
// to every prompt.
const principlesSection = `ANALIZA PSIHOLOGICA - DE CE MERGE SAU NU:

CE FUNCTIONEAZA (bazeaza-te pe aceste principii):
1. Pattern Interrupt - opreste scroll-ul cu ceva neasteptat
2. Agitarea problemei - amplifica durerea inainte de solutie
3. Proof concret - numere, testimoniale, rezultate verificabile
4. CTA specific - spune EXACT ce sa faca, nu "contacteaza-ne"

CE NU FUNCTIONEAZA (evita aceste greseli):
1. "Noi vom..." - vorbeste despre TINE, nu despre companie
2. "Calitate premium" - cuvinte goale fara substanta
3. "Nu mai asteptati/Graba" - clisee de marketing agresiv
4. "Exista o solutie" - generic si nespecific

INSTRUCTIUNI STRICTE:
1. Scrie EXCLUSIV in limba romana, FARA EMOJIS
2. Foloseste structura obligatorie de mai sus
3. Vorbeste la persoana a doua (TU), nu despre NOI
4. Fii specific, nu generic - evita fraze vagi
5. Include CTA clar si puternic
6. Fa continutul scanabil cu paragrafe scurte
7. Evita cuvinte de umplere si repetari inutile

GENEREAZA CONTINUTUL ACUM:`

// PromptParams are the resolved inputs of one prompt build. Audience
// and tone arrive as preformatted description blocks; custom overrides
// are already applied by the caller.
type PromptParams struct {
	Keywords          string
	Audience          string
	Tone              string
	ContentTypeID     string
	ContentTypeName   string
	Framework         string
	AdditionalContext string
	WordCount         string
}

// BuildPrompt assembles the full generation prompt. Unknown frameworks
// or content types simply omit the structural block, which lets custom
// free-text frameworks pass through.
func BuildPrompt(p PromptParams) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Creeaza continut de marketing persuasiv folosind framework-ul %s.\n\n", p.Framework)
	fmt.Fprintf(&b, "SUBIECT: %s\n\n", p.Keywords)
	fmt.Fprintf(&b, "AUDIENTA TINTA:\n%s\n\n", p.Audience)
	fmt.Fprintf(&b, "TON DE SCRIERE: %s\n\n", p.Tone)

	if fw, ok := frameworkInstructions[p.Framework]; ok {
		fmt.Fprintf(&b, "STRUCTURA FRAMEWORK-ULUI %s:\n%s\n\n", p.Framework, fw)
	}
	if ct, ok := contentTypeInstructions[p.ContentTypeID]; ok {
		fmt.Fprintf(&b, "CERINTE SPECIFICE PENTRU %s:\n%s\n\n", p.ContentTypeName, ct)
	}
	if p.AdditionalContext != "" {
		fmt.Fprintf(&b, "CONTEXT ADITIONAL:\n%s\n\n", p.AdditionalContext)
	}
	if hint := WordCounts[p.WordCount]; hint != "" {
		b.WriteString(hint + "\n\n")
	}

	b.WriteString("---\n\n")
	b.WriteString(principlesSection)

	if p.ContentTypeID == "instagram_caption" {
		b.WriteString("\n\nLa final, adauga hashtag-uri relevante (15-30).")
	}
	return b.String()
}

// AudienceBlock formats an audience profile for prompt insertion.
func AudienceBlock(a Audience) string {
	return fmt.Sprintf("%s\nDescriere: %s\nPain points: %s\nDorinte: %s\nStil de limbaj preferat: %s",
		a.Name, a.Description,
		strings.Join(firstN(a.PainPoints, 3), ", "),
		strings.Join(firstN(a.Desires, 3), ", "),
		a.LanguageStyle)
}

// ToneBlock formats a tone for prompt insertion.
func ToneBlock(t Tone) string {
	return fmt.Sprintf("%s\nDescriere: %s\nCaracteristici: %s\nExemple: %s",
		t.Name, t.Description,
		strings.Join(firstN(t.Characteristics, 3), ", "),
		strings.Join(firstN(t.Examples, 2), " | "))
}

func firstN(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
