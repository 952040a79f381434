package llm

// SpineExtractionPrompt instructs the model to act as an OCR engine over a
// photo of CD spines and answer with a JSON object of lines.
const SpineExtractionPrompt = `You are an OCR engine. Extract all text from the provided image of CD spines.
Return one entry per distinct line of text, in reading order from the top of the image to the bottom.
Each spine usually carries an artist and an album title; keep the text of one spine on one line.
Do not correct spelling, guess missing words, or add commentary.
Respond with JSON only: {"lines": ["...", "..."]}`

// SpineExtractionUserPrompt accompanies the image attachment.
const SpineExtractionUserPrompt = "Identify and list each distinct line of text on this image."
