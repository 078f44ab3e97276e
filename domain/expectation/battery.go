package expectation

// HousingBattery is the fixed rule set applied to every raw housing split.
// Order is significant: reports list results in this order.
func HousingBattery() []Rule {
	return []Rule{
		NotNull("price"),
		Between("price", 1_000, 12_000_000),

		// 0 marks missing market data, upper bounds exclude obvious entry errors
		Between("median_sale_price", 0, 19_000_000),
		Between("median_list_price", 0, 19_000_000),

		AtLeast("homes_sold", 0),
		AtLeast("pending_sales", 0),

		// some listings sit for years
		Between("median_dom", 0, 10_000),
		Between("avg_sale_to_list", 0, 2.0),

		NotNull("city_full"),
		LengthEquals("zipcode_str", 5),

		AtLeast("Total Population", 0),
		Between("Median Age", 0, 120),
		AtLeast("Median Home Value", 0),
	}
}

// NotNullColumns returns the columns guarded by a not-null rule in rules
func NotNullColumns(rules []Rule) map[string]bool {
	cols := make(map[string]bool)
	for _, r := range rules {
		if r.Kind == KindNotNull {
			cols[r.Column] = true
		}
	}
	return cols
}
