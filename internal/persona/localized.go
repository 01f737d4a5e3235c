package persona

import "fmt"

// Per-round canned replies for non-English sessions. The persona's catchphrases
// are English-only, so these lines stay generic and carry the localized name.
var localizedFallbacks = map[Language][FallbackRounds]string{
	Spanish: {
		"Como %s, lo primero que veo en esta imagen son sus colores y su luz. La composición guía la mirada hacia el centro, y cada detalle parece elegido con intención. Hay mucho más aquí de lo que parece a simple vista.",
		"Entiendo ese punto de vista, pero como %s me fijo en otra cosa: las texturas, las sombras y los pequeños detalles del fondo. Son ellos los que le dan a la escena su carácter.",
		"Para terminar, como %s diría que esta imagen merece una segunda mirada. Entre la luz, el color y la forma, cuenta una historia que cada uno puede leer a su manera.",
	},
	French: {
		"En tant que %s, ce qui me frappe d'abord, ce sont les couleurs et la lumière. La composition guide le regard vers le centre, et chaque détail semble choisi avec soin. Il y a ici bien plus qu'on ne le croit.",
		"Je comprends ce point de vue, mais en tant que %s je regarde autre chose : les textures, les ombres et les petits détails de l'arrière-plan. Ce sont eux qui donnent son caractère à la scène.",
		"Pour conclure, en tant que %s, je dirais que cette image mérite un second regard. Entre la lumière, la couleur et la forme, elle raconte une histoire que chacun peut lire à sa façon.",
	},
	German: {
		"Als %s fallen mir zuerst die Farben und das Licht auf. Die Komposition lenkt den Blick zur Mitte, und jedes Detail wirkt bewusst gewählt. Hier steckt mehr drin, als man auf den ersten Blick sieht.",
		"Ich verstehe diesen Punkt, aber als %s achte ich auf etwas anderes: die Texturen, die Schatten und die kleinen Details im Hintergrund. Sie geben der Szene ihren Charakter.",
		"Zum Schluss würde ich als %s sagen, dass dieses Bild einen zweiten Blick verdient. Mit Licht, Farbe und Form erzählt es eine Geschichte, die jeder auf seine Weise lesen kann.",
	},
	Korean: {
		"%s로서 이 사진에서 가장 먼저 눈에 띄는 것은 색감과 빛입니다. 구도가 시선을 중앙으로 이끌고, 모든 디테일이 의도적으로 선택된 것처럼 보입니다. 보이는 것보다 훨씬 많은 이야기가 담겨 있어요.",
		"그 의견도 이해하지만, %s로서 저는 다른 것에 주목합니다. 질감과 그림자, 그리고 배경의 작은 디테일들이 이 장면에 개성을 더해 줍니다.",
		"마지막으로 %s로서 말하자면, 이 사진은 다시 볼 가치가 있습니다. 빛과 색, 형태가 어우러져 각자 나름대로 읽을 수 있는 이야기를 들려줍니다.",
	},
	Japanese: {
		"%sとして、この写真でまず目を引くのは色と光です。構図が視線を中央へと導き、どの細部も意図して選ばれたように見えます。見た目以上に多くのものが詰まっています。",
		"その意見もわかりますが、%sとして私は別のところに注目します。質感や影、そして背景の小さな細部こそが、この場面に個性を与えているのです。",
		"最後に%sとして言うなら、この写真はもう一度見る価値があります。光と色と形が、それぞれの見方で読める物語を語っています。",
	},
}

var localizedNarrations = map[Language]string{
	Spanish:  "Como %s, veo una imagen llena de color y de luz. La composición guía la mirada, las texturas dan profundidad y el ambiente invita a quedarse un momento. Cada detalle parece contar una pequeña historia, y juntos forman una escena que merece ser mirada con calma.",
	French:   "En tant que %s, je vois une image pleine de couleur et de lumière. La composition guide le regard, les textures donnent de la profondeur et l'atmosphère invite à s'attarder. Chaque détail raconte une petite histoire, et ensemble ils forment une scène qui mérite qu'on la regarde avec calme.",
	German:   "Als %s sehe ich ein Bild voller Farbe und Licht. Die Komposition führt den Blick, die Texturen geben Tiefe, und die Stimmung lädt zum Verweilen ein. Jedes Detail erzählt eine kleine Geschichte, und zusammen ergeben sie eine Szene, die man in Ruhe betrachten sollte.",
	Korean:   "%s로서 저는 색과 빛으로 가득한 사진을 봅니다. 구도는 시선을 이끌고, 질감은 깊이를 더하며, 분위기는 잠시 머물고 싶게 만듭니다. 모든 디테일이 작은 이야기를 들려주고, 함께 모여 천천히 바라볼 만한 장면을 만듭니다.",
	Japanese: "%sとして、色と光にあふれた写真が見えます。構図が視線を導き、質感が奥行きを与え、雰囲気がしばらくここに留まりたくさせます。細部のひとつひとつが小さな物語を語り、それらが合わさって、ゆっくり眺めたくなる場面になっています。",
}

// FallbackIn returns the canned reply for round in lang. English uses the
// persona's own table; other languages use a generic localized line.
func (d Definition) FallbackIn(lang Language, round int) string {
	table, ok := localizedFallbacks[lang]
	if !ok {
		return d.Fallback(round)
	}
	if round < 1 {
		round = 1
	}
	return fmt.Sprintf(table[(round-1)%FallbackRounds], d.Name(lang))
}

// NarrationFallbackIn is the single-turn counterpart of FallbackIn.
func (d Definition) NarrationFallbackIn(lang Language) string {
	tmpl, ok := localizedNarrations[lang]
	if !ok {
		return d.NarrationFallback
	}
	return fmt.Sprintf(tmpl, d.Name(lang))
}
