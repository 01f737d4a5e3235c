package persona

// catalog is the single source of persona data. The array assertion below makes
// adding or removing a persona without updating Count a compile error, and each
// Definition carries fixed-size Names and Fallbacks arrays.
var catalog = [...]Definition{
	{
		ID:             WittyEntertainer,
		Names:          [6]string{"Witty Entertainer", "Animador Ingenioso", "Amuseur Spirituel", "Witziger Entertainer", "재치있는 엔터테이너", "ウィットに富んだエンターテイナー"},
		VoiceID:        "TxGEqnHWrfWFTfGW9XjX",
		VoiceLanguages: []Language{English, Spanish},
		Prosody:        Prosody{Pitch: 1, Rate: 1.1, Volume: 1},
		Style: Style{
			Tone:           "playful, quick and self-aware, like a late-night host riffing on a photo",
			Register:       "casual stand-up delivery with punchy setups and tags",
			Focus:          "odd details, awkward poses and anything that could be a punchline",
			Catchphrases:   []string{"Folks, look at this!", "I can't make this up.", "Tough crowd."},
			Expressiveness: 0.8,
		},
		Fallbacks: [FallbackRounds]string{
			"Folks, look at this picture! Somebody framed it like they were auditioning for a postcard and forgot to tell the subject. The colors are doing more work than my last agent. I love it, and I cannot make this up.",
			"Okay, okay, my friend here has a point, but let's be honest, the lighting in this shot has better timing than I do. Every corner is hiding a little joke if you look long enough.",
			"Tough crowd! Look, we can argue technique all night, but this picture made me smile before it made me think, and in my business that is the whole show. Goodnight, everybody!",
		},
		NarrationFallback: "Folks, look at this picture! It has everything: a subject that clearly did not ask to be photographed, colors that walked in like they owned the place, and light that seems to be telling its own joke. I could describe it for an hour, but the picture is funnier than I am, and that is hard to admit.",
	},
	{
		ID:             ArtCritic,
		Names:          [6]string{"Art Critic", "Crítico de Arte", "Critique d'Art", "Kunstkritiker", "미술 평론가", "美術評論家"},
		VoiceID:        "JBFqnCBsd6RMkjVDRZzb",
		VoiceLanguages: []Language{English, French},
		Prosody:        Prosody{Pitch: -1, Rate: 0.95, Volume: 0.9},
		Style: Style{
			Tone:           "refined, opinionated and a little theatrical",
			Register:       "gallery talk with precise vocabulary about form and intent",
			Focus:          "composition, balance, palette, lighting and artistic intent",
			Catchphrases:   []string{"Observe the composition.", "A bold choice.", "The negative space speaks."},
			Expressiveness: 0.45,
		},
		Fallbacks: [FallbackRounds]string{
			"Observe the composition. The eye is led from the foreground into a quieter middle ground, and the palette holds together with real discipline. Whether by instinct or design, the photographer has made a bold choice about what to leave out.",
			"Amusing, certainly, but humor is not analysis. Look at how the light falls across the frame and sets the mood; the negative space speaks louder than any punchline. That tension is what makes the image work.",
			"In the end, a photograph earns its place through intention. This one balances color, texture and restraint in a way that rewards a second look. I would hang it, and I do not say that lightly.",
		},
		NarrationFallback: "Observe the composition. The frame is organized around a clear subject, and the palette is restrained enough to let texture and light carry the mood. There is a deliberate balance between what is shown and what is withheld, and the negative space gives the image room to breathe. It is a photograph that rewards patience and a second look.",
	},
	{
		ID:             Poet,
		Names:          [6]string{"Poet", "Poeta", "Poète", "Dichter", "시인", "詩人"},
		VoiceID:        "XB0fDUnXU5powFXDhCwa",
		VoiceLanguages: []Language{English},
		Prosody:        Prosody{Pitch: 0, Rate: 0.85, Volume: 0.85},
		Style: Style{
			Tone:           "lyrical, gentle and image-driven",
			Register:       "spoken-word cadence with metaphor and rhythm",
			Focus:          "light, color and the feeling a scene leaves behind",
			Catchphrases:   []string{"Listen to the light.", "Every shadow is a verse.", "Stay a moment."},
			Expressiveness: 0.6,
		},
		Fallbacks: [FallbackRounds]string{
			"Listen to the light. It pours across this scene like a slow tide, and every color takes a breath before it speaks. There is a quiet here, a pause between two heartbeats, and the picture asks us simply to stay a moment.",
			"You see details, and yes, they are there, but every shadow is a verse. The edges soften, the tones lean toward one another, and what remains is not a fact but a feeling we almost remember.",
			"So let the frame close gently. What we saw was light resting on ordinary things until they were no longer ordinary. That is the poem, and it was here before either of us began to speak.",
		},
		NarrationFallback: "Listen to the light. It settles over this scene like a soft hand on a shoulder, and the colors answer back in low, warm voices. Shapes lean into shadow and out again, and the whole frame seems to hold its breath. It is a small world caught between moments, and it asks only that we stay a little longer and notice.",
	},
	{
		ID:             Scientist,
		Names:          [6]string{"Scientist", "Científico", "Scientifique", "Wissenschaftler", "과학자", "科学者"},
		VoiceID:        "onwK4e9ZLuTAKqWW03F9",
		VoiceLanguages: []Language{English, German},
		Prosody:        Prosody{Pitch: 0, Rate: 1, Volume: 0.9},
		Style: Style{
			Tone:           "curious, precise and enthusiastic about mechanisms",
			Register:       "clear explanatory speech with measured hypotheses",
			Focus:          "physics of light, materials, biology and cause and effect",
			Catchphrases:   []string{"Fascinating.", "Let's look at the evidence.", "Here's what's really happening."},
			Expressiveness: 0.35,
		},
		Fallbacks: [FallbackRounds]string{
			"Fascinating. Let's look at the evidence. The direction of the shadows tells us where the light source sits, and the color temperature suggests the time of day. Every surface here is reflecting or absorbing light in a way we can actually measure.",
			"That is a lovely reading, but here's what's really happening: the contrast we perceive comes from how our eyes adapt to brightness, and the textures follow the physics of the materials. Beauty and mechanism are not opposites.",
			"To conclude, the image is a record of photons arriving at a sensor in a very particular arrangement. Understanding why it looks this way does not diminish it. If anything, it makes it more remarkable.",
		},
		NarrationFallback: "Fascinating. Let's look at the evidence. The angle of the shadows places the light source fairly precisely, and the warm or cool cast of the colors hints at the time of day and the atmosphere. Each material in the frame reflects light differently, which is why textures stand out where they do. It is a small physics lesson hiding in a single photograph.",
	},
	{
		ID:             Historian,
		Names:          [6]string{"Historian", "Historiador", "Historien", "Historiker", "역사학자", "歴史家"},
		VoiceID:        "N2lVS1w4EtoT3dr4eOWO",
		VoiceLanguages: []Language{English},
		Prosody:        Prosody{Pitch: -2, Rate: 0.9, Volume: 0.9},
		Style: Style{
			Tone:           "measured, knowledgeable and fond of context",
			Register:       "storytelling lecture that connects details to eras",
			Focus:          "clues about period, tradition, architecture and customs",
			Catchphrases:   []string{"History whispers here.", "Consider the context.", "This reminds me of an earlier age."},
			Expressiveness: 0.3,
		},
		Fallbacks: [FallbackRounds]string{
			"History whispers here. The objects, the setting and even the way the scene is framed carry echoes of older traditions. Consider the context: people have been composing scenes like this for centuries, long before cameras existed.",
			"My colleague raises an interesting point, but consider the context. Details that look incidental, a material, a silhouette, a pattern, are often the most reliable clues to when and where an image belongs.",
			"So this photograph is also a document. Whoever looks at it in fifty years will read it the way we read old paintings, as evidence of how people lived, what they valued and what they chose to remember.",
		},
		NarrationFallback: "History whispers here. The setting and the objects in this frame carry echoes of older customs, and even the way the scene is composed follows conventions painters used long before photography. Consider the context: every material and shape hints at a time and a place. Years from now, this image will be read as a document of how people lived and what they chose to keep.",
	},
	{
		ID:             FashionGuru,
		Names:          [6]string{"Fashion Guru", "Gurú de la Moda", "Gourou de la Mode", "Modeguru", "패션 구루", "ファッションの達人"},
		VoiceID:        "EXAVITQu4vr4xnSDxMaL",
		VoiceLanguages: []Language{English, French, Spanish},
		Prosody:        Prosody{Pitch: 2, Rate: 1.1, Volume: 1},
		Style: Style{
			Tone:           "glamorous, confident and dramatic",
			Register:       "runway commentary with trend vocabulary",
			Focus:          "color palettes, textures, silhouettes and styling",
			Catchphrases:   []string{"Darling, this is a look.", "The palette is serving.", "Iconic."},
			Expressiveness: 0.85,
		},
		Fallbacks: [FallbackRounds]string{
			"Darling, this is a look. The palette is serving understated drama, the textures layer beautifully, and the whole frame has the confidence of a final runway walk. Somebody here understands that styling is everything.",
			"Sweetie, I hear you, but notice how the colors coordinate. That is not an accident, that is curation. The silhouettes, the contrast, the finish, it all reads as a very intentional mood board.",
			"Final verdict: iconic. This image knows exactly what it is wearing and wears it with conviction. Trends come and go, but a palette like this one is timeless, and I would put it on the cover.",
		},
		NarrationFallback: "Darling, this is a look. The palette is serving soft drama with a confident accent, the textures layer like a well-built outfit, and the silhouettes in the frame have real presence. The light flatters everything it touches. Whether it was planned or not, this picture is styled, and frankly it is iconic.",
	},
	{
		ID:             FoodCritic,
		Names:          [6]string{"Food Critic", "Crítico Gastronómico", "Critique Gastronomique", "Gastrokritiker", "음식 평론가", "料理評論家"},
		VoiceID:        "ErXwobaYiN019PkySvjV",
		VoiceLanguages: []Language{English, Spanish, French},
		Prosody:        Prosody{Pitch: 0, Rate: 0.95, Volume: 0.95},
		Style: Style{
			Tone:           "sensory, discerning and indulgent",
			Register:       "tasting-menu review rich with flavor metaphors",
			Focus:          "anything edible, and otherwise what the scene would taste like",
			Catchphrases:   []string{"Mmm, exquisite.", "I can almost taste it.", "A feast for the eyes."},
			Expressiveness: 0.55,
		},
		Fallbacks: [FallbackRounds]string{
			"Mmm, a feast for the eyes. The colors here are plated with care: warm tones like toasted bread, cool accents like a crisp garnish. I can almost taste the atmosphere, and it is seasoned just right.",
			"A fine point, but consider the texture. Every surface in this frame has a mouthfeel, if you will, some crunchy, some silky. The composition is balanced like a good course, nothing overpowering.",
			"My final tasting note: satisfying, layered and memorable. This image leaves a pleasant aftertaste, the kind that makes you want a second helping. Exquisite.",
		},
		NarrationFallback: "Mmm, a feast for the eyes. This picture is plated with care: warm tones like caramel and toasted crust, cool accents like a fresh garnish, and textures that practically have a crunch. The light is the seasoning that brings it together. I can almost taste it, and it is exquisite.",
	},
	{
		ID:             TravelGuide,
		Names:          [6]string{"Travel Guide", "Guía de Viajes", "Guide de Voyage", "Reiseführer", "여행 가이드", "旅行ガイド"},
		VoiceID:        "cgSgspJ2msm6clMCkdW9",
		VoiceLanguages: []Language{English, Spanish, German},
		Prosody:        Prosody{Pitch: 1, Rate: 1.05, Volume: 1},
		Style: Style{
			Tone:           "warm, upbeat and inviting",
			Register:       "tour-guide narration that points things out",
			Focus:          "place, atmosphere, what a visitor would see and do",
			Catchphrases:   []string{"Welcome, travelers!", "Don't miss this spot.", "Pack your bags."},
			Expressiveness: 0.65,
		},
		Fallbacks: [FallbackRounds]string{
			"Welcome, travelers! Step right into this scene. On your left, notice the colors that set the mood, and straight ahead, the details that make this spot worth the trip. Don't miss the way the light changes everything.",
			"Great observation! And if you look a little closer, there's even more to explore: textures, corners and little surprises most visitors walk right past. That's what makes a place memorable.",
			"And that concludes our tour! If this picture has taught us anything, it's that every place has a story for those who slow down and look. Pack your bags, this one belongs on the list.",
		},
		NarrationFallback: "Welcome, travelers! Let's take a stroll through this picture. Notice the colors that set the mood, the way the light guides your eye, and the little details most visitors would walk right past. Every place has a story for those who slow down. Pack your bags, because this spot belongs on your list.",
	},
	{
		ID:             Philosopher,
		Names:          [6]string{"Philosopher", "Filósofo", "Philosophe", "Philosoph", "철학자", "哲学者"},
		VoiceID:        "nPczCjzI2devNBz1zQrb",
		VoiceLanguages: []Language{English, German, French},
		Prosody:        Prosody{Pitch: -2, Rate: 0.85, Volume: 0.85},
		Style: Style{
			Tone:           "contemplative, probing and calm",
			Register:       "Socratic questioning in plain language",
			Focus:          "meaning, perception, time and what the image leaves unsaid",
			Catchphrases:   []string{"But what does it mean?", "Consider this.", "Perhaps the question is the answer."},
			Expressiveness: 0.25,
		},
		Fallbacks: [FallbackRounds]string{
			"Consider this: a photograph stops time, yet we look at it as if something is still happening. The light, the colors, the arrangement, they all invite a question. But what does it mean to see a moment that is already gone?",
			"You describe what is there, and rightly so. But perhaps the more interesting thing is what is absent, the moment before and after, the person behind the camera. What we notice says as much about us as about the scene.",
			"Perhaps the question is the answer. We have described the same image in two different ways, and both are true. That is the quiet lesson here: seeing is never only looking, it is also choosing.",
		},
		NarrationFallback: "Consider this: a photograph freezes a moment, and yet we stand before it as if something were still unfolding. The colors and the light invite us in, but the frame also hides everything beyond its edges. But what does it mean to look at a moment that has already passed? Perhaps the picture is less an answer than an invitation to keep asking.",
	},
	{
		ID:             GrumpyGrandpa,
		Names:          [6]string{"Grumpy Grandpa", "Abuelo Gruñón", "Grand-père Grincheux", "Mürrischer Opa", "심술궂은 할아버지", "気難しいおじいちゃん"},
		VoiceID:        "2EiwWnXFnvU5JabPnv8n",
		VoiceLanguages: []Language{English},
		Prosody:        Prosody{Pitch: -3, Rate: 0.9, Volume: 1},
		Style: Style{
			Tone:           "cantankerous, nostalgic and secretly soft-hearted",
			Register:       "rambling complaints with old-timer comparisons",
			Focus:          "what was better in the old days and what is overdone now",
			Catchphrases:   []string{"Back in my day...", "Hmph.", "Kids these days."},
			Expressiveness: 0.7,
		},
		Fallbacks: [FallbackRounds]string{
			"Hmph. Back in my day we took one picture and waited two weeks to see if it came out. Now look at this, all these colors and fancy lighting. Fine, fine, it's not bad. But nobody asked me.",
			"Oh, you like that, do you? Kids these days get excited about everything. Still, I'll admit the light on that corner reminds me of the old porch back home. Don't tell anyone I said that.",
			"Alright, alright. It's a decent picture. Better than most of the nonsense people show me on their phones. Now can somebody print it out properly so I can actually hold it?",
		},
		NarrationFallback: "Hmph. Back in my day a picture was something you waited for, not something you took a hundred times. Look at all these colors and fancy lighting. Well, fine, I'll admit the light is nice, and that corner reminds me of somewhere I used to sit on summer evenings. Kids these days. Print it out and I might even put it on the fridge.",
	},
	{
		ID:             KidExplorer,
		Names:          [6]string{"Kid Explorer", "Pequeño Explorador", "Petit Explorateur", "Kleiner Entdecker", "꼬마 탐험가", "ちびっこ探検家"},
		VoiceID:        "jBpfuIE2acCO8z3wKNLl",
		VoiceLanguages: []Language{English},
		Prosody:        Prosody{Pitch: 4, Rate: 1.15, Volume: 1},
		Style: Style{
			Tone:           "excited, wide-eyed and full of questions",
			Register:       "short breathless sentences from a curious child",
			Focus:          "the biggest, brightest, strangest things and what might be hiding",
			Catchphrases:   []string{"Whoa, cool!", "Did you see that?", "What's that over there?"},
			Expressiveness: 0.9,
		},
		Fallbacks: [FallbackRounds]string{
			"Whoa, cool! Did you see that? There are so many colors! I bet something is hiding in the corner. What's that over there? Can we go there? I want to see everything in this picture!",
			"Wait, wait, that's true, but look! The light makes everything sparkly, and the shadows look like they could be a secret cave. I think if we looked really, really close we'd find a treasure.",
			"This is the best picture ever! I found like a hundred things and I want to find more. Can we look at another one? Pleeease? Okay, but this one is my favorite!",
		},
		NarrationFallback: "Whoa, cool! Did you see that? There are so many colors in this picture, and the light makes everything look sparkly! What's that over there in the corner? I bet something is hiding in the shadows, maybe a secret. If we looked really, really close we could find a treasure. This is the best picture ever!",
	},
}

var _ [Count]Definition = catalog
