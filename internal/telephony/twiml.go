package telephony

// EmptyTwiML is the acknowledgment body returned to Twilio for inbound SMS.
// The AI response is produced elsewhere (OpenClaw); this service only records,
// so the TwiML carries no verbs.
const EmptyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`
