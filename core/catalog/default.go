package catalog

var defaultBrands = []Brand{
	{Name: "Maruti", Models: []string{"Swift", "Baleno", "Alto"}, Defaults: Specs{1200, 82, 37}},
	{Name: "Hyundai", Models: []string{"i10", "i20", "Creta"}, Defaults: Specs{1200, 83, 37}},
	{Name: "Honda", Models: []string{"City", "Amaze", "Civic"}, Defaults: Specs{1500, 119, 40}},
	{Name: "Toyota", Models: []string{"Corolla", "Innova", "Fortuner"}, Defaults: Specs{2700, 201, 80}},
	{Name: "Mercedes-Benz", Models: []string{"C-Class", "E-Class", "S-Class"}, Defaults: Specs{3000, 258, 66}, Luxury: true, LuxuryCap: 150_000},
	{Name: "BMW", Models: []string{"3 Series", "5 Series", "X5"}, Defaults: Specs{3000, 258, 68}, Luxury: true, LuxuryCap: 120_000},
	{Name: "Audi", Models: []string{"A4", "A6", "Q7"}, Defaults: Specs{3000, 245, 65}, Luxury: true, LuxuryCap: 140_000},
	{Name: "Ferrari", Models: []string{"488 Gtb"}, Defaults: Specs{3900, 660, 78}, Luxury: true, LuxuryCap: 600_000},
	{Name: "Rolls-Royce", Models: []string{"Ghost"}, Defaults: Specs{6600, 563, 82}, Luxury: true, LuxuryCap: 350_000},
}

// DefaultPriceCaps is the built-in engine bracket table.
func DefaultPriceCaps() PriceCaps {
	return PriceCaps{
		Brackets: []Bracket{
			{MaxEngineCC: 1200, Cap: 20_000},
			{MaxEngineCC: 2000, Cap: 25_000},
			{MaxEngineCC: 3500, Cap: 60_000},
		},
		DefaultLuxuryCap: 80_000,
		FloorRatio:       0.6,
	}
}

// DefaultLimits mirrors the accepted input ranges of the pricing form.
func DefaultLimits() Limits {
	return Limits{
		MinYear:       1995,
		MaxOdometerKM: 300_000,
		MinEngineCC:   800,
		MaxEngineCC:   7000,
		MinPowerBHP:   50,
		MaxPowerBHP:   800,
		MinFuelTankL:  30,
		MaxFuelTankL:  100,
	}
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultBrands, DefaultPriceCaps(), DefaultLimits())
	if err != nil {
		panic("catalog: built-in tables are invalid: " + err.Error())
	}
	return c
}
