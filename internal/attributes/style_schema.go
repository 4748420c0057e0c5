package attributes

var styleDefinition = &Schema{
	Name: "style-definition",
	Categories: []Category{
		{
			Key:         "core_style",
			Label:       "Core Style",
			Order:       1,
			Description: "High-level style identity that describes what kind of visual world this style belongs to.",
			Properties: []Property{
				{
					Key:         "render_domain",
					Label:       "Render domain",
					Type:        TypeEnum,
					Description: "Overall rendering family for this style (e.g., comic, anime, painterly, photorealistic).",
					Options: []Option{
						{Value: "comic_illustration", Label: "Comic Illustration"},
						{Value: "manga_anime", Label: "Manga / Anime"},
						{Value: "cartoon", Label: "Cartoon"},
						{Value: "concept_art", Label: "Concept Art"},
						{Value: "painterly", Label: "Painterly Illustration"},
						{Value: "semi_realistic", Label: "Semi-Realistic Illustration"},
						{Value: "photorealistic", Label: "Photorealistic"},
						{Value: "3d_render", Label: "3D Render"},
						{Value: "pixel_art", Label: "Pixel Art"},
					},
					AllowCustom: true,
				},
				{
					Key:         "genre",
					Label:       "Genre / subject focus",
					Type:        TypeTags,
					Description: "Broad genre cues this style is best suited for (e.g., fantasy, sci-fi, slice of life).",
					Options: []Option{
						{Value: "fantasy", Label: "Fantasy"},
						{Value: "sci_fi", Label: "Sci-Fi"},
						{Value: "urban", Label: "Urban / Street"},
						{Value: "slice_of_life", Label: "Slice of Life"},
						{Value: "romance", Label: "Romance"},
						{Value: "horror", Label: "Horror"},
						{Value: "noir", Label: "Noir"},
						{Value: "historical", Label: "Historical"},
					},
					AllowCustom: true,
				},
				{
					Key:         "influences",
					Label:       "Visual influences",
					Type:        TypeTags,
					Description: "Optional shorthand for influences or reference traditions (e.g., European BD, Saturday-morning cartoon, studio-style animation).",
					AllowCustom: true,
				},
			},
		},
		{
			Key:         "line_and_detail",
			Label:       "Line & Detail",
			Order:       2,
			Description: "Linework character and how much detail the style carries.",
			Properties: []Property{
				{
					Key:   "line_weight",
					Label: "Line weight",
					Type:  TypeEnum,
					Options: []Option{
						{Value: "none", Label: "No Visible Lines"},
						{Value: "thin", Label: "Thin, Delicate Lines"},
						{Value: "medium", Label: "Medium, Even Lines"},
						{Value: "bold", Label: "Bold, Heavy Lines"},
						{Value: "variable", Label: "Variable Line Weight"},
					},
					AllowCustom: true,
				},
				{
					Key:   "detail_level",
					Label: "Detail level",
					Type:  TypeEnum,
					Options: []Option{
						{Value: "minimal", Label: "Minimal / Iconic"},
						{Value: "moderate", Label: "Moderate Detail"},
						{Value: "high", Label: "Highly Detailed"},
					},
					AllowCustom: true,
				},
				{
					Key:   "linework_traits",
					Label: "Linework traits",
					Type:  TypeTags,
					Options: []Option{
						{Value: "clean_inks", Label: "Clean Inks"},
						{Value: "sketchy", Label: "Sketchy / Loose"},
						{Value: "hatching", Label: "Hatching"},
						{Value: "ink_wash", Label: "Ink Wash"},
					},
					AllowCustom: true,
				},
			},
		},
		{
			Key:         "color_and_lighting",
			Label:       "Color & Lighting",
			Order:       3,
			Description: "Color palette, saturation, contrast, and lighting character for this style.",
			Properties: []Property{
				{
					Key:   "color_palette",
					Label: "Color palette",
					Type:  TypeTags,
					Options: []Option{
						{Value: "bold_colors", Label: "Bold Colors"},
						{Value: "limited_palette", Label: "Limited Palette"},
						{Value: "pastel", Label: "Pastel Palette"},
						{Value: "high_contrast", Label: "High Contrast"},
						{Value: "muted", Label: "Muted / Desaturated"},
					},
					AllowCustom: true,
				},
				{
					Key:   "saturation",
					Label: "Saturation",
					Type:  TypeEnum,
					Options: []Option{
						{Value: "low", Label: "Low Saturation"},
						{Value: "medium", Label: "Medium Saturation"},
						{Value: "high", Label: "High Saturation"},
					},
					AllowCustom: true,
				},
				{
					Key:   "lighting_style",
					Label: "Lighting style",
					Type:  TypeTags,
					Options: []Option{
						{Value: "soft_light", Label: "Soft, Even Light"},
						{Value: "dramatic_light", Label: "Dramatic / High Contrast Light"},
						{Value: "rim_light", Label: "Rim Lighting"},
						{Value: "studio_light", Label: "Studio Lighting"},
						{Value: "ambient_light", Label: "Ambient / Environmental Light"},
					},
					AllowCustom: true,
				},
			},
		},
		{
			Key:         "rendering_technique",
			Label:       "Rendering Technique",
			Order:       4,
			Description: "Medium, shading approach and surface texture.",
			Properties: []Property{
				{
					Key:   "medium",
					Label: "Medium",
					Type:  TypeTags,
					Options: []Option{
						{Value: "digital_paint", Label: "Digital Painting"},
						{Value: "watercolor", Label: "Watercolor"},
						{Value: "oil_paint", Label: "Oil Paint"},
						{Value: "gouache", Label: "Gouache"},
						{Value: "vector", Label: "Flat Vector"},
						{Value: "cel", Label: "Cel Animation"},
					},
					AllowCustom: true,
				},
				{
					Key:   "shading",
					Label: "Shading",
					Type:  TypeEnum,
					Options: []Option{
						{Value: "flat", Label: "Flat Color"},
						{Value: "cel_shaded", Label: "Cel Shaded"},
						{Value: "soft_gradient", Label: "Soft Gradients"},
						{Value: "painterly", Label: "Painterly Shading"},
						{Value: "realistic", Label: "Realistic Shading"},
					},
					AllowCustom: true,
				},
				{
					Key:         "texture",
					Label:       "Surface texture",
					Type:        TypeString,
					Description: "Paper grain, brush texture, film grain and similar finish cues.",
				},
			},
		},
		{
			Key:         "composition_and_camera",
			Label:       "Composition & Camera",
			Order:       5,
			Description: "Default framing and camera language for images in this style.",
			Properties: []Property{
				{
					Key:   "shot_type",
					Label: "Shot type",
					Type:  TypeTags,
					Options: []Option{
						{Value: "close_up", Label: "Close-Up"},
						{Value: "medium_shot", Label: "Medium Shot"},
						{Value: "full_body", Label: "Full Body"},
						{Value: "wide_shot", Label: "Wide Shot"},
					},
					AllowCustom: true,
				},
				{
					Key:   "camera_angle",
					Label: "Camera angle",
					Type:  TypeEnum,
					Options: []Option{
						{Value: "eye_level", Label: "Eye Level"},
						{Value: "low_angle", Label: "Low Angle"},
						{Value: "high_angle", Label: "High Angle"},
						{Value: "dutch_angle", Label: "Dutch Angle"},
						{Value: "overhead", Label: "Overhead"},
					},
					AllowCustom: true,
				},
				{
					Key:   "lens",
					Label: "Lens",
					Type:  TypeString,
				},
			},
		},
		{
			Key:         "mood_and_atmosphere",
			Label:       "Mood & Atmosphere",
			Order:       6,
			Description: "Emotional tone the style should carry.",
			Properties: []Property{
				{
					Key:   "mood",
					Label: "Mood",
					Type:  TypeTags,
					Options: []Option{
						{Value: "whimsical", Label: "Whimsical"},
						{Value: "moody", Label: "Moody"},
						{Value: "epic", Label: "Epic"},
						{Value: "cozy", Label: "Cozy"},
						{Value: "eerie", Label: "Eerie"},
						{Value: "serene", Label: "Serene"},
					},
					AllowCustom: true,
				},
				{
					Key:   "atmosphere",
					Label: "Atmosphere notes",
					Type:  TypeString,
				},
			},
		},
	},
}
