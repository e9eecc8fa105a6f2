// Package grocery guesses a shopping category from a free-text item name.
package grocery

import (
	"strings"

	"github.com/dukerupert/compras/internal/model"
)

// Categorize returns the category for the given item name. It matches
// case-insensitively: exact match first, then substring match. ok is false
// when nothing matches.
func Categorize(itemName string) (cat model.Category, ok bool) {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return "", false
	}

	if cat, ok := exactMatch[name]; ok {
		return cat, true
	}

	// Ordered longer/more-specific first
	for _, entry := range substringMatches {
		if strings.Contains(name, entry.keyword) {
			return entry.category, true
		}
	}

	return "", false
}

const (
	fruits     = model.CategoryFruits
	vegetables = model.CategoryVegetables
	dairy      = model.CategoryDairy
	meat       = model.CategoryMeat
	grains     = model.CategoryGrains
	beverages  = model.CategoryBeverages
	cleaning   = model.CategoryCleaning
	personal   = model.CategoryPersonal
)

// Short words that would produce false positives as substrings.
var exactMatch = map[string]model.Category{
	"sal":    grains,
	"salt":   grains,
	"uva":    fruits,
	"uvas":   fruits,
	"kiwi":   fruits,
	"lima":   fruits,
	"lime":   fruits,
	"figo":   fruits,
	"pear":   fruits,
	"ovo":    dairy,
	"ovos":   dairy,
	"eggs":   dairy,
	"chá":    beverages,
	"cha":    beverages,
	"tea":    beverages,
	"gin":    beverages,
	"rum":    beverages,
	"ham":    meat,
	"pão":    grains,
	"pao":    grains,
	"oil":    grains,
	"óleo":   grains,
	"oleo":   grains,
	"milho":  vegetables,
	"corn":   vegetables,
	"alho":   vegetables,
	"soap":   personal,
	"razor":  personal,
	"sponge": cleaning,
}

var substringMatches = []struct {
	keyword  string
	category model.Category
}{
	// Cleaning, before beverages so "água sanitária" is not water
	{"água sanitária", cleaning},
	{"agua sanitaria", cleaning},
	{"sabão em pó", cleaning},
	{"sabao em po", cleaning},
	{"detergente", cleaning},
	{"detergent", cleaning},
	{"desinfetante", cleaning},
	{"amaciante", cleaning},
	{"alvejante", cleaning},
	{"esponja", cleaning},
	{"limpador", cleaning},
	{"multiuso", cleaning},
	{"saco de lixo", cleaning},
	{"trash bag", cleaning},
	{"papel toalha", cleaning},
	{"paper towel", cleaning},
	{"dish soap", cleaning},
	{"laundry", cleaning},
	{"bleach", cleaning},
	{"cleaner", cleaning},
	{"vassoura", cleaning},

	// Personal care
	{"papel higiênico", personal},
	{"papel higienico", personal},
	{"toilet paper", personal},
	{"pasta de dente", personal},
	{"creme dental", personal},
	{"toothpaste", personal},
	{"escova de dente", personal},
	{"toothbrush", personal},
	{"fio dental", personal},
	{"desodorante", personal},
	{"deodorant", personal},
	{"condicionador", personal},
	{"conditioner", personal},
	{"shampoo", personal},
	{"xampu", personal},
	{"sabonete", personal},
	{"body wash", personal},
	{"absorvente", personal},
	{"protetor solar", personal},
	{"sunscreen", personal},
	{"hidratante", personal},
	{"lotion", personal},
	{"fralda", personal},
	{"diaper", personal},

	// Dairy
	{"leite condensado", dairy},
	{"creme de leite", dairy},
	{"requeijão", dairy},
	{"requeijao", dairy},
	{"iogurte", dairy},
	{"yogurt", dairy},
	{"manteiga", dairy},
	{"butter", dairy},
	{"queijo", dairy},
	{"cheese", dairy},
	{"leite", dairy},
	{"milk", dairy},
	{"cream", dairy},
	{"nata", dairy},

	// Meat
	{"carne moída", meat},
	{"carne moida", meat},
	{"ground beef", meat},
	{"peito de frango", meat},
	{"frango", meat},
	{"chicken", meat},
	{"carne", meat},
	{"beef", meat},
	{"porco", meat},
	{"pork", meat},
	{"linguiça", meat},
	{"linguica", meat},
	{"sausage", meat},
	{"bacon", meat},
	{"presunto", meat},
	{"peixe", meat},
	{"fish", meat},
	{"salmão", meat},
	{"salmao", meat},
	{"salmon", meat},
	{"camarão", meat},
	{"camarao", meat},
	{"shrimp", meat},
	{"atum", meat},
	{"tuna", meat},
	{"steak", meat},
	{"bife", meat},
	{"turkey", meat},
	{"peru", meat},

	// Beverages
	{"água", beverages},
	{"agua", beverages},
	{"water", beverages},
	{"suco", beverages},
	{"juice", beverages},
	{"refrigerante", beverages},
	{"soda", beverages},
	{"cerveja", beverages},
	{"beer", beverages},
	{"vinho", beverages},
	{"wine", beverages},
	{"café", beverages},
	{"cafe", beverages},
	{"coffee", beverages},

	// Grains and pantry
	{"arroz", grains},
	{"rice", grains},
	{"feijão", grains},
	{"feijao", grains},
	{"beans", grains},
	{"macarrão", grains},
	{"macarrao", grains},
	{"pasta", grains},
	{"farinha", grains},
	{"flour", grains},
	{"aveia", grains},
	{"oat", grains},
	{"pão", grains},
	{"bread", grains},
	{"cereal", grains},
	{"lentilha", grains},
	{"lentil", grains},
	{"quinoa", grains},
	{"açúcar", grains},
	{"acucar", grains},
	{"sugar", grains},
	{"biscoito", grains},
	{"cracker", grains},

	// Fruits
	{"banana", fruits},
	{"maçã", fruits},
	{"maca", fruits},
	{"apple", fruits},
	{"laranja", fruits},
	{"orange", fruits},
	{"limão", fruits},
	{"limao", fruits},
	{"lemon", fruits},
	{"morango", fruits},
	{"strawberr", fruits},
	{"abacaxi", fruits},
	{"pineapple", fruits},
	{"manga", fruits},
	{"mango", fruits},
	{"mamão", fruits},
	{"mamao", fruits},
	{"papaya", fruits},
	{"melancia", fruits},
	{"watermelon", fruits},
	{"melão", fruits},
	{"melon", fruits},
	{"abacate", fruits},
	{"avocado", fruits},
	{"pera", fruits},
	{"pêssego", fruits},
	{"peach", fruits},
	{"grape", fruits},
	{"berr", fruits},

	// Vegetables
	{"tomate", vegetables},
	{"tomato", vegetables},
	{"alface", vegetables},
	{"lettuce", vegetables},
	{"cebola", vegetables},
	{"onion", vegetables},
	{"batata", vegetables},
	{"potato", vegetables},
	{"cenoura", vegetables},
	{"carrot", vegetables},
	{"brócolis", vegetables},
	{"brocolis", vegetables},
	{"broccoli", vegetables},
	{"abobrinha", vegetables},
	{"zucchini", vegetables},
	{"abóbora", vegetables},
	{"abobora", vegetables},
	{"pepino", vegetables},
	{"cucumber", vegetables},
	{"pimentão", vegetables},
	{"pimentao", vegetables},
	{"couve", vegetables},
	{"kale", vegetables},
	{"espinafre", vegetables},
	{"spinach", vegetables},
	{"repolho", vegetables},
	{"cabbage", vegetables},
	{"mandioca", vegetables},
	{"garlic", vegetables},
	{"cogumelo", vegetables},
	{"mushroom", vegetables},
}
