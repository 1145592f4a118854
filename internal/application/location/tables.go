package location

const unsplashParams = "?ixlib=rb-4.0.3&auto=format&fit=crop&w=1170&q=80"

// DefaultImage is returned when nothing better is known about a location.
const DefaultImage = "https://images.unsplash.com/photo-1488646953014-85cb44e25828" + unsplashParams

// fallbackImages maps normalized location names to a known representative
// photo.
var fallbackImages = map[string]string{
	"lagos":          "https://images.unsplash.com/photo-1618828665011-0abd973f7bb8" + unsplashParams,
	"abuja":          "https://images.unsplash.com/photo-1586348943529-beaae6c28db9" + unsplashParams,
	"nairobi":        "https://images.unsplash.com/photo-1611348524140-53c9a25263d6" + unsplashParams,
	"cape town":      "https://images.unsplash.com/photo-1580060839134-75a5edca2e99" + unsplashParams,
	"marrakech":      "https://images.unsplash.com/photo-1597212618440-806262de4f6b" + unsplashParams,
	"cairo":          "https://images.unsplash.com/photo-1572252009286-268acec5ca0a" + unsplashParams,
	"paris":          "https://images.unsplash.com/photo-1502602898657-3e91760cbb34" + unsplashParams,
	"london":         "https://images.unsplash.com/photo-1513635269975-59663e0ac1ad" + unsplashParams,
	"rome":           "https://images.unsplash.com/photo-1552832230-c0197dd311b5" + unsplashParams,
	"italy":          "https://images.unsplash.com/photo-1516483638261-f4dbaf036963" + unsplashParams,
	"barcelona":      "https://images.unsplash.com/photo-1583422409516-2895a77efded" + unsplashParams,
	"santorini":      "https://images.unsplash.com/photo-1570077188670-e3a8d69ac5ff" + unsplashParams,
	"swiss alps":     "https://images.unsplash.com/photo-1531366936337-7c912a4589a7" + unsplashParams,
	"kyoto":          "https://images.unsplash.com/photo-1493976040374-85c8e12f0c0e" + unsplashParams,
	"osaka":          "https://images.unsplash.com/photo-1590559399607-99d51e854632" + unsplashParams,
	"tokyo":          "https://images.unsplash.com/photo-1540959733332-eab4deabeeaf" + unsplashParams,
	"bali":           "https://images.unsplash.com/photo-1537996194471-e657df975ab4" + unsplashParams,
	"bangkok":        "https://images.unsplash.com/photo-1508009603885-50cf7c579365" + unsplashParams,
	"dubai":          "https://images.unsplash.com/photo-1512453979798-5ea266f8880c" + unsplashParams,
	"new york":       "https://images.unsplash.com/photo-1496442226666-8d4a0e62e6e9" + unsplashParams,
	"rio de janeiro": "https://images.unsplash.com/photo-1483729558449-99ef09a8c325" + unsplashParams,
	"machu picchu":   "https://images.unsplash.com/photo-1526392060635-9d6019884377" + unsplashParams,
	"sydney":         "https://images.unsplash.com/photo-1506973035872-a4ec16b8e8d9" + unsplashParams,
}

// disambiguations pins names shared by several places to the one travellers
// usually mean.
var disambiguations = map[string]string{
	"lagos":      "lagos nigeria city skyline",
	"paris":      "paris france eiffel tower",
	"london":     "london england city skyline",
	"rome":       "rome italy colosseum",
	"cambridge":  "cambridge england university",
	"georgia":    "georgia country caucasus tbilisi",
	"alexandria": "alexandria egypt mediterranean",
	"valencia":   "valencia spain city",
	"san jose":   "san jose costa rica",
	"victoria":   "victoria british columbia canada",
	"santiago":   "santiago chile andes city",
	"granada":    "granada spain alhambra",
	"kingston":   "kingston jamaica",
	"perth":      "perth western australia",
	"birmingham": "birmingham england city",
}
