package extract

// extractionPrompt instructs the vision model how to read a scanned
// insurance payment check. The response must be a single JSON object with
// exactly the eight fields of the schema and no surrounding text; the
// parser still strips fences and commentary defensively.
const extractionPrompt = `You are parsing a scanned insurance payment check image. Extract the data with extreme precision.

IMPORTANT: Read every character carefully. Do NOT guess or approximate. If you cannot read a digit clearly, look at the MICR line (bottom of check) and the written amount line to cross-verify.

STEP-BY-STEP PROCESS:
1. PAYER: Read the company name from the top of the check (logo area or header text).
   - For BlueCross BlueShield of Florida checks from Jacksonville FL:
     * If "Health Options" appears in header → "BlueCross BlueShield of Florida (Health Options)"
     * If "State Employees' PPO Plan" appears → "BCBS FL - State Employees' PPO Plan"
     * Otherwise → "BlueCross BlueShield of Florida"
   - For other BCBS plans, use the full state name: "BlueCross BlueShield of [State]"
   - For other insurers, use the full official name as printed

2. DATE: Look for "Date", "DATE PAID", "ISSUE DATE", or a date box (MO|DAY|YEAR).
   - Output in MM/DD/YYYY format exactly
   - Read each digit individually — do not confuse 0/6/8 or 1/7

3. AMOUNT:
   - Find the NUMERIC amount (usually preceded by $ or asterisks like ******$)
   - Find the WRITTEN amount (e.g. "THREE HUNDRED FOUR & 94/100")
   - BOTH must match. If they don't, re-read more carefully.
   - Output as a number: 304.94 (not a string, no $ sign)

4. BANK: Read the bank name, usually at the bottom or in small text.
   - Common: "Citibank Delaware" (BCBS FL checks), "Regions Bank" (BCBS TN), etc.

5. CHECK NUMBER: Usually top-right or labeled "CHECK NUMBER" or "CHECK NO."
   - Preserve ALL digits including leading zeros
   - Cross-verify with the last group of numbers in the MICR line at the bottom

6. ACCOUNT: Look for "ACCOUNT ID", "PAYEE NUMBER", or similar field on the check face.
   - If none exists, use empty string ""

7. ROUTING: From the MICR line at the very bottom of the check (the line with special banking font).
   - First group of ~9 digits = routing number
   - If not legible, use empty string ""

8. CLAIM: Look for "CLAIM NUMBER" or similar field.
   - If none exists, use empty string ""

Return ONLY a valid JSON object with NO other text, NO markdown, NO explanation:
{"Payer": "", "Date": "", "Amount": 0.00, "Bank": "", "Check_Number": "", "Account": "", "Routing": "", "Claim": ""}`
