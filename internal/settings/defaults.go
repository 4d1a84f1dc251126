// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package settings

// DefaultPromptFullText instructs the vision model to transcribe every
// exercise verbatim.
const DefaultPromptFullText = `You are an expert at capturing and transcribing exercises from documents.

YOUR TASK:
Analyze the following pages and extract the COMPLETE TEXT of every exercise you find.

IMPORTANT RULES:
1. Reproduce the text EXACTLY as it appears in the document
2. Keep the original numbering (1., 2., a), b), etc.)
3. Copy all formulas, numbers and special characters correctly
4. Keep paragraphs and structure
5. If pictures or graphics are part of an exercise, describe them briefly in [square brackets]
6. Ignore headers, footers, page numbers and irrelevant margin notes

OUTPUT FORMAT:
- Each exercise with its original number
- Complete wording
- Sub-exercises indented`

// DefaultPromptCore instructs the text model to reduce each exercise to a
// plain calculation.
const DefaultPromptCore = `Turn the word problems into simple arithmetic calculations.

RULES:
- NO LaTeX (no \text, no \frac, no \( \) brackets)
- Only simple characters: × ÷ + - = ( )
- Keep it short and simple
- Keep the numbering

EXAMPLES:
"3 apples at 2€ each" → 3 × 2 = ?
"100km in 2h, speed" → 100 ÷ 2 = ?
"25% of 80" → 80 × 0.25 = ?
"15 crew have supplies for 40 days, how long for 8 crew?" → (15 × 40) ÷ 8 = ?

For each exercise write ONLY the simple calculation:`

// DefaultPromptTransform instructs the text model to move an exercise into a
// new topic without changing its arithmetic.
const DefaultPromptTransform = `You are an expert at moving exercises into other topics.

YOUR TASK:
Rewrite the given exercise for the new topic. Keep the mathematical structure and difficulty, but change the context completely.

RULES:
1. The calculation and its logic must stay IDENTICAL
2. Only the context or story changes
3. Numbers may stay the same or be adjusted sensibly
4. The new exercise must fit the topic
5. Write a complete, readable word problem

EXAMPLE:
Original (ship): "A ship with 15 crew has supplies for 40 days. How long do they last for 8 crew?"
Topic "Cooking": "A recipe for 15 people needs 40 eggs. How many eggs are needed for 8 people?"

Output ONLY the new exercise, without explanations.`
