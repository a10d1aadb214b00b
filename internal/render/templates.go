package render

import (
	"fmt"

	"github.com/afiya/afiyacare/internal/language"
)

const (
	// Analyzing acknowledges a diagnosis request before the service answers
	Analyzing = "⏳ Analyzing your symptoms..."

	// Apology is sent whenever handling fails. It is bilingual (English and
	// Hausa) because the failure may happen before a language is known.
	Apology = "😔 Sorry, I encountered an error. Please try again.\n\n" +
		"Gafara, na sami matsala. Don Allah a sake gwada."
)

// welcomeTemplates take the user's display name as the only verb
var welcomeTemplates = map[language.Code]string{
	language.English: `👋 Hello %s! Welcome to *Afiya Care*

I'm your AI health assistant powered by N-ATLaS 🤖

🌍 *I speak 5 languages:*
- English
- Yoruba (Yorùbá)
- Hausa
- Igbo
- Nigerian Pidgin

💬 *How to use me:*
Just describe your symptoms in any language!

Example:
"I have a headache and fever"
"Mo ni irora ori ati iba" (Yoruba)
"Ina da ciwon kai" (Hausa)

⚕️ Type /help for more commands

Let's get started! What symptoms are you experiencing?`,

	language.Yoruba: `👋 Ẹ káàbọ̀ %s! Káàbọ̀ sí *Afiya Care*

Èmi ni olùrànlọ́wọ́ ìlera AI tí N-ATLaS ń darí 🤖

🌍 *Mo lè sọ èdè márùn-ún:*
- English
- Yorùbá
- Hausa
- Igbo
- Nigerian Pidgin

💬 *Bí o ṣe lè lò mi:*
Sọ àwọn àmì àìsàn rẹ ní èdè èyíkéyìí!

Àpẹẹrẹ:
"Mo ní irora orí àti ibà"

⚕️ Tẹ /help fún àwọn àṣẹ míràn

Jẹ́ ká bẹ̀rẹ̀! Kí ni àwọn àmì àìsàn tí ó ń ní?`,

	language.Hausa: `👋 Sannu %s! Barka da zuwa *Afiya Care*

Ni ne mai taimaka lafiya AI wanda N-ATLaS ke gudanarwa 🤖

🌍 *Ina iya magana da harsuna biyar:*
- Turanci
- Yoruba
- Hausa
- Igbo
- Nigerian Pidgin

💬 *Yadda za ku yi amfani da ni:*
Ku bayyana alamun rashin lafiyar ku da kowace harshe!

Misali:
"Ina da ciwon kai da zazzabi"

⚕️ Rubuta /help don ƙarin umarni

Mu fara! Wane irin alamun rashin lafiya kuke da su?`,

	language.Igbo: `👋 Nnọọ %s! Nnọọ na *Afiya Care*

Abụ m onye inyeaka ahụ ike AI nke N-ATLaS na-eduzi 🤖

🌍 *Enwere m ike ịsụ asụsụ ise:*
- Bekee
- Yoruba
- Hausa
- Igbo
- Nigerian Pidgin

💬 *Otu ị ga-esi jiri m:*
Kọwaa mgbaàmà gị n'asụsụ ọ bụla!

Ọmụmaatụ:
"Enwere m isi ọwụwa na ahụ ọkụ"

⚕️ Pịa /help maka iwu ndị ọzọ

Ka anyị malite! Kedu mgbaàmà ị nwere?`,

	language.Pidgin: `👋 How far %s! Welcome to *Afiya Care*

I be your AI health helper wey N-ATLaS dey power 🤖

🌍 *I fit speak 5 languages:*
- English
- Yoruba
- Hausa
- Igbo
- Nigerian Pidgin

💬 *How to use me:*
Just tell me wetin dey pain you for any language!

Example:
"My head dey pain me and I get fever"

⚕️ Type /help for more commands

Make we start! Wetin dey pain you?`,
}

// Welcome returns the greeting for lang, falling back to English for any
// code without a template.
func Welcome(lang language.Code, name string) string {
	tmpl, ok := welcomeTemplates[lang]
	if !ok {
		tmpl = welcomeTemplates[language.English]
	}
	return fmt.Sprintf(tmpl, name)
}

// Help returns the command reference. It is the same in every language.
func Help() string {
	return `📖 *Afiya Care Commands*

/start - Start or restart conversation
/help - Show this help message
/languages - Show all supported languages

💬 *How to get help:*
Just describe your symptoms naturally in any of these languages:
- English
- Yoruba (Yorùbá)
- Hausa
- Igbo
- Nigerian Pidgin

Example messages:
"I have fever and cough"
"Mo ni ibà àti ikó"
"Ina da zazzabi da tari"
"Enwere m ahụ ọkụ na ụkwara"
"I get fever and cough"

⚠️ *IMPORTANT DISCLAIMER:*
This bot provides health information only. It is NOT a substitute for professional medical advice. Always consult a qualified healthcare provider for diagnosis and treatment.

🚨 In case of emergency, call your local emergency services immediately!

` + Divider + `
Powered by N-ATLaS (NCAIR1/N-ATLaS)`
}

// Languages returns the list of supported languages with examples
func Languages() string {
	return `🌍 *Supported Languages*

I can understand and respond in:

🇬🇧 *English*
Example: "I have a headache"

🇳🇬 *Yoruba (Yorùbá)*
Example: "Mo ni irora ori"

🇳🇬 *Hausa*
Example: "Ina da ciwon kai"

🇳🇬 *Igbo*
Example: "Enwere m isi ọwụwa"

🇳🇬 *Nigerian Pidgin*
Example: "My head dey pain me"

` + Divider + `
Just send your message in any of these languages and I'll automatically detect it! 🚀`
}
