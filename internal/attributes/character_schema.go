package attributes

// CharacterPromptCategories are the visual categories rendered into image prompts.
var CharacterPromptCategories = []string{
	"core_features",
	"face",
	"hair",
	"wardrobe",
	"expression_and_pose",
}

var characterAppearance = &Schema{
	Name: "character-appearance",
	Categories: []Category{
		{
			Key:         "core_features",
			Label:       "Core Features",
			Order:       1,
			Description: "Overall build and apparent age.",
			Properties: []Property{
				{
					Key:   "age_range",
					Label: "Apparent age",
					Type:  TypeEnum,
					Options: []Option{
						{Value: "child", Label: "Child"},
						{Value: "teen", Label: "Teen"},
						{Value: "young_adult", Label: "Young Adult"},
						{Value: "adult", Label: "Adult"},
						{Value: "middle_aged", Label: "Middle-Aged"},
						{Value: "elderly", Label: "Elderly"},
					},
					AllowCustom: true,
				},
				{
					Key:   "body_type",
					Label: "Body type",
					Type:  TypeEnum,
					Options: []Option{
						{Value: "slim", Label: "Slim"},
						{Value: "athletic", Label: "Athletic"},
						{Value: "average", Label: "Average"},
						{Value: "stocky", Label: "Stocky"},
						{Value: "heavyset", Label: "Heavyset"},
					},
					AllowCustom: true,
				},
				{
					Key:   "height",
					Label: "Height",
					Type:  TypeEnum,
					Options: []Option{
						{Value: "short", Label: "Short"},
						{Value: "average", Label: "Average Height"},
						{Value: "tall", Label: "Tall"},
					},
					AllowCustom: true,
				},
				{
					Key:         "species",
					Label:       "Species / ancestry",
					Type:        TypeString,
					Description: "Human, elf, android, talking fox...",
				},
			},
		},
		{
			Key:   "face",
			Label: "Face",
			Order: 2,
			Properties: []Property{
				{
					Key:   "face_shape",
					Label: "Face shape",
					Type:  TypeEnum,
					Options: []Option{
						{Value: "oval", Label: "Oval"},
						{Value: "round", Label: "Round"},
						{Value: "square", Label: "Square"},
						{Value: "heart", Label: "Heart-Shaped"},
						{Value: "angular", Label: "Angular"},
					},
					AllowCustom: true,
				},
				{
					Key:         "eye_color",
					Label:       "Eye color",
					Type:        TypeString,
					AllowCustom: true,
				},
				{
					Key:         "skin_tone",
					Label:       "Skin tone",
					Type:        TypeString,
					AllowCustom: true,
				},
				{
					Key:   "distinguishing_marks",
					Label: "Distinguishing marks",
					Type:  TypeTags,
					Options: []Option{
						{Value: "freckles", Label: "Freckles"},
						{Value: "scar", Label: "Scar"},
						{Value: "tattoo", Label: "Tattoo"},
						{Value: "beauty_mark", Label: "Beauty Mark"},
						{Value: "glasses", Label: "Glasses"},
					},
					AllowCustom: true,
				},
			},
		},
		{
			Key:   "hair",
			Label: "Hair",
			Order: 3,
			Properties: []Property{
				{
					Key:         "hair_color",
					Label:       "Hair color",
					Type:        TypeTags,
					AllowCustom: true,
				},
				{
					Key:   "hair_length",
					Label: "Hair length",
					Type:  TypeEnum,
					Options: []Option{
						{Value: "bald", Label: "Bald"},
						{Value: "buzzed", Label: "Buzzed"},
						{Value: "short", Label: "Short"},
						{Value: "shoulder", Label: "Shoulder-Length"},
						{Value: "long", Label: "Long"},
					},
					AllowCustom: true,
				},
				{
					Key:   "hair_style",
					Label: "Hair style",
					Type:  TypeTags,
					Options: []Option{
						{Value: "straight", Label: "Straight"},
						{Value: "wavy", Label: "Wavy"},
						{Value: "curly", Label: "Curly"},
						{Value: "braided", Label: "Braided"},
						{Value: "ponytail", Label: "Ponytail"},
						{Value: "bun", Label: "Bun"},
					},
					AllowCustom: true,
				},
			},
		},
		{
			Key:   "wardrobe",
			Label: "Wardrobe",
			Order: 4,
			Properties: []Property{
				{
					Key:   "outfit_style",
					Label: "Outfit style",
					Type:  TypeTags,
					Options: []Option{
						{Value: "casual", Label: "Casual"},
						{Value: "formal", Label: "Formal"},
						{Value: "armor", Label: "Armor"},
						{Value: "uniform", Label: "Uniform"},
						{Value: "streetwear", Label: "Streetwear"},
						{Value: "period", Label: "Period Costume"},
					},
					AllowCustom: true,
				},
				{
					Key:         "signature_items",
					Label:       "Signature items",
					Type:        TypeTags,
					Description: "Accessories or props that always appear with the character.",
					AllowCustom: true,
				},
				{
					Key:   "color_scheme",
					Label: "Clothing colors",
					Type:  TypeString,
				},
			},
		},
		{
			Key:   "expression_and_pose",
			Label: "Expression & Pose",
			Order: 5,
			Properties: []Property{
				{
					Key:   "default_expression",
					Label: "Default expression",
					Type:  TypeEnum,
					Options: []Option{
						{Value: "neutral", Label: "Neutral"},
						{Value: "smiling", Label: "Smiling"},
						{Value: "serious", Label: "Serious"},
						{Value: "smirking", Label: "Smirking"},
						{Value: "melancholic", Label: "Melancholic"},
					},
					AllowCustom: true,
				},
				{
					Key:         "body_language",
					Label:       "Body language",
					Type:        TypeTags,
					AllowCustom: true,
				},
			},
		},
		{
			Key:         "voice_and_background",
			Label:       "Voice & Background",
			Order:       6,
			Description: "Non-visual notes kept with the character. Not sent to the image model.",
			Properties: []Property{
				{
					Key:   "voice",
					Label: "Voice",
					Type:  TypeString,
				},
				{
					Key:   "backstory",
					Label: "Backstory notes",
					Type:  TypeString,
				},
			},
		},
	},
}
