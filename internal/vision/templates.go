package vision

import "github.com/ent0n29/lenstalk/internal/persona"

// fallbackDescriptions ground the debate when the vision service is unavailable.
// They describe a generic photograph so personas can still talk about light,
// color and composition.
var fallbackDescriptions = map[persona.Language]string{
	persona.English: "The photograph shows a scene with a clear main subject placed near the center of the frame, " +
		"surrounded by a background that adds context without competing for attention. The composition follows a " +
		"loose rule of thirds, with the eye drawn from the foreground toward the subject and then outward to the edges. " +
		"The color palette mixes warm and cool tones: softer neutrals dominate, while a few brighter accents stand out " +
		"and give the image energy. Lighting appears natural, falling from one side and creating gentle shadows that " +
		"add depth and texture to surfaces. Highlights are controlled, and darker areas still hold visible detail. " +
		"The focus is sharpest on the subject, with the background slightly softer, which separates the layers of the " +
		"scene. The overall mood is calm and observational, as if the moment was captured naturally rather than staged. " +
		"Small details in the corners, such as shapes, patterns and objects, reward a closer look and suggest a story " +
		"beyond the frame. The image feels balanced, inviting viewers to linger and interpret it in their own way.",
	persona.Spanish: "La fotografía muestra una escena con un sujeto principal claro situado cerca del centro del encuadre, " +
		"rodeado de un fondo que aporta contexto sin competir por la atención. La composición sigue de forma libre la regla " +
		"de los tercios y lleva la mirada desde el primer plano hacia el sujeto y luego hacia los bordes. La paleta combina " +
		"tonos cálidos y fríos: dominan los neutros suaves, mientras algunos acentos más vivos dan energía a la imagen. " +
		"La luz parece natural, llega desde un lado y crea sombras suaves que añaden profundidad y textura. Las zonas " +
		"oscuras conservan detalle. El enfoque es más nítido en el sujeto y el fondo queda algo más suave, separando las " +
		"capas de la escena. El ambiente es tranquilo y observador, como si el momento se hubiera captado de forma natural. " +
		"Los pequeños detalles de las esquinas invitan a mirar con más atención y sugieren una historia más allá del encuadre.",
	persona.French: "La photographie montre une scène avec un sujet principal bien identifiable, placé près du centre du cadre " +
		"et entouré d'un arrière-plan qui apporte du contexte sans détourner l'attention. La composition suit librement la " +
		"règle des tiers et guide le regard du premier plan vers le sujet, puis vers les bords. La palette mêle tons chauds " +
		"et froids : des neutres doux dominent, tandis que quelques accents plus vifs donnent de l'énergie à l'image. " +
		"La lumière semble naturelle, venant d'un côté et créant des ombres douces qui ajoutent profondeur et texture. " +
		"Les zones sombres gardent du détail. La netteté est maximale sur le sujet, l'arrière-plan étant un peu plus flou, " +
		"ce qui sépare les plans. L'atmosphère est calme et contemplative, comme si l'instant avait été saisi naturellement. " +
		"Les petits détails dans les coins invitent à regarder de plus près et suggèrent une histoire au-delà du cadre.",
	persona.German: "Das Foto zeigt eine Szene mit einem klaren Hauptmotiv nahe der Bildmitte, umgeben von einem Hintergrund, " +
		"der Kontext liefert, ohne vom Motiv abzulenken. Die Komposition folgt locker der Drittelregel und führt den Blick " +
		"vom Vordergrund zum Motiv und dann zu den Rändern. Die Farbpalette mischt warme und kühle Töne: sanfte Neutraltöne " +
		"dominieren, während einige kräftigere Akzente dem Bild Energie geben. Das Licht wirkt natürlich, fällt von einer " +
		"Seite ein und erzeugt weiche Schatten, die Tiefe und Textur schaffen. Dunkle Bereiche zeigen noch Details. " +
		"Die Schärfe liegt auf dem Motiv, der Hintergrund ist etwas weicher, was die Bildebenen trennt. Die Stimmung ist " +
		"ruhig und beobachtend, als wäre der Moment natürlich eingefangen worden. Kleine Details in den Ecken belohnen " +
		"einen genaueren Blick und deuten eine Geschichte jenseits des Bildrands an.",
	persona.Korean: "이 사진은 화면 중앙 가까이에 뚜렷한 주 피사체가 있고, 주의를 빼앗지 않으면서 맥락을 더해 주는 배경이 그 주변을 감싸고 있는 장면을 보여 줍니다. " +
		"구도는 삼분할 법칙을 느슨하게 따르며, 시선을 전경에서 피사체로, 그리고 가장자리로 이끕니다. 색감은 따뜻한 톤과 차가운 톤이 섞여 있어 " +
		"부드러운 중간색이 주를 이루고, 몇몇 밝은 포인트가 이미지에 활기를 더합니다. 빛은 자연광처럼 보이며 한쪽에서 들어와 부드러운 그림자를 만들고, " +
		"표면에 깊이와 질감을 더합니다. 어두운 부분에도 디테일이 살아 있습니다. 초점은 피사체에 가장 선명하게 맞춰져 있고 배경은 약간 부드러워 " +
		"장면의 층이 분리됩니다. 전체적인 분위기는 차분하고 관찰적이며, 연출되지 않은 자연스러운 순간을 포착한 듯합니다. 모서리의 작은 디테일들은 " +
		"자세히 볼수록 프레임 너머의 이야기를 암시합니다.",
	persona.Japanese: "この写真には、画面の中央付近にはっきりとした主な被写体があり、注意を奪わずに文脈を添える背景がその周りを囲んでいます。" +
		"構図は三分割法にゆるやかに従い、視線を前景から被写体へ、そして画面の端へと導きます。色調は暖色と寒色が混ざり合い、" +
		"柔らかな中間色が主体となる一方で、いくつかの鮮やかなアクセントが画像に活気を与えています。光は自然光のようで、片側から差し込み、" +
		"柔らかな影を作って表面に奥行きと質感を加えています。暗い部分にも細部が残っています。ピントは被写体に最もはっきり合い、" +
		"背景はやや柔らかく、場面の層が分かれて見えます。全体の雰囲気は穏やかで観察的で、演出ではなく自然に捉えられた瞬間のようです。" +
		"四隅の小さな細部は、よく見るほど画面の外にある物語を感じさせます。",
}

// FallbackDescription returns the templated description for lang.
func FallbackDescription(lang persona.Language) string {
	if d, ok := fallbackDescriptions[lang]; ok {
		return d
	}
	return fallbackDescriptions[persona.English]
}
