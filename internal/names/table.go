package names

// wellKnown is the static symbol-to-name table consulted before any cache
// or network lookup. Covers the large-cap names users add most often.
var wellKnown = map[string]string{
	"AAPL":  "Apple Inc.",
	"MSFT":  "Microsoft Corporation",
	"GOOGL": "Alphabet Inc.",
	"GOOG":  "Alphabet Inc.",
	"AMZN":  "Amazon.com Inc.",
	"NVDA":  "NVIDIA Corporation",
	"META":  "Meta Platforms Inc.",
	"TSLA":  "Tesla Inc.",
	"BRK.B": "Berkshire Hathaway Inc.",
	"BRK.A": "Berkshire Hathaway Inc.",
	"UNH":   "UnitedHealth Group Inc.",
	"JNJ":   "Johnson & Johnson",
	"JPM":   "JPMorgan Chase & Co.",
	"V":     "Visa Inc.",
	"PG":    "Procter & Gamble Co.",
	"XOM":   "Exxon Mobil Corporation",
	"HD":    "Home Depot Inc.",
	"CVX":   "Chevron Corporation",
	"MA":    "Mastercard Inc.",
	"ABBV":  "AbbVie Inc.",
	"PFE":   "Pfizer Inc.",
	"AVGO":  "Broadcom Inc.",
	"COST":  "Costco Wholesale Corporation",
	"DIS":   "Walt Disney Co.",
	"KO":    "Coca-Cola Co.",
	"MRK":   "Merck & Co. Inc.",
	"PEP":   "PepsiCo Inc.",
	"TMO":   "Thermo Fisher Scientific Inc.",
	"CSCO":  "Cisco Systems Inc.",
	"WMT":   "Walmart Inc.",
	"ABT":   "Abbott Laboratories",
	"BAC":   "Bank of America Corp.",
	"CRM":   "Salesforce Inc.",
	"MCD":   "McDonald's Corporation",
	"ACN":   "Accenture plc",
	"ADBE":  "Adobe Inc.",
	"LLY":   "Eli Lilly and Co.",
	"NFLX":  "Netflix Inc.",
	"AMD":   "Advanced Micro Devices Inc.",
	"INTC":  "Intel Corporation",
	"LIN":   "Linde plc",
	"DHR":   "Danaher Corporation",
	"TXN":   "Texas Instruments Inc.",
	"VZ":    "Verizon Communications Inc.",
	"PM":    "Philip Morris International Inc.",
	"NKE":   "Nike Inc.",
	"WFC":   "Wells Fargo & Co.",
	"UPS":   "United Parcel Service Inc.",
	"BMY":   "Bristol-Myers Squibb Co.",
	"NEE":   "NextEra Energy Inc.",
	"RTX":   "RTX Corporation",
	"ORCL":  "Oracle Corporation",
	"QCOM":  "Qualcomm Inc.",
	"T":     "AT&T Inc.",
	"COP":   "ConocoPhillips",
	"HON":   "Honeywell International Inc.",
	"UNP":   "Union Pacific Corporation",
	"LOW":   "Lowe's Companies Inc.",
	"IBM":   "International Business Machines Corp.",
	"AMGN":  "Amgen Inc.",
	"SBUX":  "Starbucks Corporation",
	"CAT":   "Caterpillar Inc.",
	"BA":    "Boeing Co.",
	"GE":    "General Electric Co.",
	"INTU":  "Intuit Inc.",
	"DE":    "Deere & Co.",
	"MS":    "Morgan Stanley",
	"GS":    "Goldman Sachs Group Inc.",
	"SPGI":  "S&P Global Inc.",
	"PLD":   "Prologis Inc.",
	"LMT":   "Lockheed Martin Corporation",
	"BLK":   "BlackRock Inc.",
	"ELV":   "Elevance Health Inc.",
	"GILD":  "Gilead Sciences Inc.",
	"AXP":   "American Express Co.",
	"SYK":   "Stryker Corporation",
	"MDT":   "Medtronic plc",
	"ADI":   "Analog Devices Inc.",
	"TJX":   "TJX Companies Inc.",
	"MDLZ":  "Mondelez International Inc.",
	"BKNG":  "Booking Holdings Inc.",
	"ADP":   "Automatic Data Processing Inc.",
	"VRTX":  "Vertex Pharmaceuticals Inc.",
	"ISRG":  "Intuitive Surgical Inc.",
	"MMC":   "Marsh & McLennan Companies Inc.",
	"CVS":   "CVS Health Corporation",
	"MO":    "Altria Group Inc.",
	"REGN":  "Regeneron Pharmaceuticals Inc.",
	"CI":    "Cigna Group",
	"ZTS":   "Zoetis Inc.",
	"SCHW":  "Charles Schwab Corporation",
	"SO":    "Southern Co.",
	"C":     "Citigroup Inc.",
	"PGR":   "Progressive Corporation",
	"BDX":   "Becton Dickinson and Co.",
	"CB":    "Chubb Ltd.",
	"DUK":   "Duke Energy Corporation",
	"TGT":   "Target Corporation",
	"ITW":   "Illinois Tool Works Inc.",
	"USB":   "U.S. Bancorp",
	"CL":    "Colgate-Palmolive Co.",
	"MMM":   "3M Co.",
	"EOG":   "EOG Resources Inc.",
	"APD":   "Air Products and Chemicals Inc.",
	"BSX":   "Boston Scientific Corporation",
	"PNC":   "PNC Financial Services Group Inc.",
	"GD":    "General Dynamics Corporation",
	"MU":    "Micron Technology Inc.",
	"CSX":   "CSX Corporation",
	"NOC":   "Northrop Grumman Corporation",
	"FDX":   "FedEx Corporation",
	"AON":   "Aon plc",
	"CME":   "CME Group Inc.",
	"EQIX":  "Equinix Inc.",
	"SHW":   "Sherwin-Williams Co.",
	"ICE":   "Intercontinental Exchange Inc.",
	"EMR":   "Emerson Electric Co.",
	"PYPL":  "PayPal Holdings Inc.",
	"SNPS":  "Synopsys Inc.",
	"CDNS":  "Cadence Design Systems Inc.",
	"KLAC":  "KLA Corporation",
	"LRCX":  "Lam Research Corporation",
	"AMAT":  "Applied Materials Inc.",
	"MRVL":  "Marvell Technology Inc.",
	"PANW":  "Palo Alto Networks Inc.",
	"CRWD":  "CrowdStrike Holdings Inc.",
	"SNOW":  "Snowflake Inc.",
	"NOW":   "ServiceNow Inc.",
	"UBER":  "Uber Technologies Inc.",
	"ABNB":  "Airbnb Inc.",
	"SHOP":  "Shopify Inc.",
	"SQ":    "Block Inc.",
	"COIN":  "Coinbase Global Inc.",
	"PLTR":  "Palantir Technologies Inc.",
	"RBLX":  "Roblox Corporation",
	"SOFI":  "SoFi Technologies Inc.",
	"HOOD":  "Robinhood Markets Inc.",
	"RIVN":  "Rivian Automotive Inc.",
	"LCID":  "Lucid Group Inc.",
	"F":     "Ford Motor Co.",
	"GM":    "General Motors Co.",
	"DAL":   "Delta Air Lines Inc.",
	"UAL":   "United Airlines Holdings Inc.",
	"AAL":   "American Airlines Group Inc.",
	"LUV":   "Southwest Airlines Co.",
	"CCL":   "Carnival Corporation",
	"MAR":   "Marriott International Inc.",
	"SPY":   "SPDR S&P 500 ETF Trust",
	"QQQ":   "Invesco QQQ Trust",
	"DIA":   "SPDR Dow Jones Industrial Average ETF",
	"IWM":   "iShares Russell 2000 ETF",
	"VTI":   "Vanguard Total Stock Market ETF",
	"VOO":   "Vanguard S&P 500 ETF",
	"GLD":   "SPDR Gold Shares",
	"SLV":   "iShares Silver Trust",
}
