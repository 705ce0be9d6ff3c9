package game

import "sort"

// DefaultCategory is substituted for unknown category names. A bad category
// never fails a game start.
const DefaultCategory = "comida"

var categories = map[string][]string{
	"futbol":      {"Messi", "Cristiano Ronaldo", "Neymar", "Mbappé", "Haaland", "Benzema", "Lewandowski", "De Bruyne"},
	"comida":      {"Pizza", "Hamburguesa", "Taco", "Sushi", "Pasta", "Ceviche", "Paella", "Ramen"},
	"paises":      {"Perú", "Brasil", "Argentina", "España", "Francia", "Japón", "Italia", "Alemania"},
	"peliculas":   {"Avengers", "Titanic", "Star Wars", "Harry Potter", "Inception", "Matrix", "Avatar", "Gladiador"},
	"animales":    {"León", "Tigre", "Elefante", "Delfín", "Águila", "Panda", "Lobo", "Jirafa"},
	"profesiones": {"Doctor", "Ingeniero", "Profesor", "Chef", "Piloto", "Arquitecto", "Abogado", "Designer"},
	"marcas":      {"Apple", "Samsung", "Nike", "Adidas", "Coca-Cola", "McDonald's", "Amazon", "Google"},
	"videojuegos": {"Mario", "Sonic", "Pikachu", "Link", "Minecraft", "Fortnite", "Among Us", "Roblox"},
}

// ResolveCategory maps a requested category name to a known one, falling back
// to DefaultCategory. Empty and unknown names both degrade to the default.
func ResolveCategory(name string) string {
	if _, ok := categories[name]; ok {
		return name
	}
	return DefaultCategory
}

// Words returns the word set for a category, resolving unknown names first.
func Words(category string) []string {
	return categories[ResolveCategory(category)]
}

// Categories lists the known category names in stable order.
func Categories() []string {
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
