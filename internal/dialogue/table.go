package dialogue

import "support-chat-be/internal/constant"

func handoff() Reply {
	return Reply{Text: constant.HandoffAcceptText, Handoff: true}
}

func direct(text string) Reply {
	return Reply{Text: text}
}

// DefaultTable is the production keyword table. Order matters: matching is
// first-by-declaration, so broader greetings sit above business keys and
// the handoff triggers sit in their own block.
var DefaultTable = []Entry{
	// Greetings and small talk
	{Key: "hi", Reply: direct("Hello! How can I assist you with your study abroad journey today?")},
	{Key: "hello", Reply: direct("Hi there! Welcome to support. How can I help?")},
	{Key: "hey", Reply: direct("Hey! Looking for information on universities or courses?")},
	{Key: "good morning", Reply: direct("Good morning! How can I help you start your journey?")},
	{Key: "good afternoon", Reply: direct("Good afternoon! Hope you are having a great day.")},
	{Key: "good evening", Reply: direct("Good evening! Feel free to ask me anything about our services.")},
	{Key: "how are you", Reply: direct("I'm just a bot, but I'm functioning perfectly! How can I help you?")},
	{Key: "who are you", Reply: direct("I am the virtual assistant, here to guide you.")},
	{Key: "thank you", Reply: direct("You're welcome! Let me know if you need anything else.")},
	{Key: "thanks", Reply: direct("Anytime! Happy to help.")},
	{Key: "bye", Reply: direct("Goodbye! Have a wonderful day.")},
	{Key: "goodbye", Reply: direct("See you soon! Don't hesitate to reach out again.")},
	{Key: "ok", Reply: direct("Okay! What else would you like to know?")},

	// Core business queries
	{Key: "courses", Reply: direct("We offer guidance for Medical, Engineering, Arts, Business, Nursing, Pharmacy, and Aviation courses. Which one interests you?")},
	{Key: "course", Reply: direct("We have a wide range of courses like MBBS, B.Tech, MBA, and more. Are you looking for UG or PG?")},
	{Key: "medical", Reply: direct("Great! We have excellent options for MBBS, BDS, and MD/MS abroad.")},
	{Key: "mbbs", Reply: direct("MBBS is a popular choice. We can guide you to top medical universities.")},
	{Key: "engineering", Reply: direct("We can help you get into top engineering colleges at home and abroad.")},
	{Key: "business", Reply: direct("MBA and BBA programs are available in top business schools worldwide.")},
	{Key: "nursing", Reply: direct("Nursing is a noble profession with great global demand. We can help you find the right college.")},

	// Services and logistics
	{Key: "contact", Reply: direct("You can reach us through the contact page, or type 'connect' to talk to an agent.")},
	{Key: "visa", Reply: direct("We provide comprehensive visa assistance, from documentation to interview preparation.")},
	{Key: "fee", Reply: direct("Fee structures vary by university and country. Connect with an agent for a specific fee structure.")},
	{Key: "cost", Reply: direct("The cost depends on the country and course. Our counselors can give you a tailored estimate.")},
	{Key: "scholarship", Reply: direct("Many universities offer merit scholarships! Our counselors can help you apply.")},
	{Key: "admission", Reply: direct("Admission processes differ by country. We guide you through every step.")},
	{Key: "documents", Reply: direct("Usually you need transcripts, passport, photos, and ID proof. Ask an agent for a detailed checklist.")},
	{Key: "loan", Reply: direct("We assist with educational loan processing to make your studies affordable.")},

	// Countries
	{Key: "countries", Reply: direct("We cover the UK, Europe, Russia, China, the Philippines, Georgia, and more.")},
	{Key: "country", Reply: direct("We deal with universities in many countries including the UK, Canada, Germany, Russia, and China.")},
	{Key: "uk", Reply: direct("The UK is a fantastic destination. We handle UK admissions.")},
	{Key: "canada", Reply: direct("Canada is very popular. Ask an agent about upcoming intakes.")},
	{Key: "germany", Reply: direct("Germany offers great engineering programs with low tuition in some cases.")},
	{Key: "russia", Reply: direct("Russia is a top destination for medical studies with recognized universities.")},

	// Human handoff triggers
	{Key: "admin", Reply: handoff()},
	{Key: "human", Reply: handoff()},
	{Key: "support", Reply: handoff()},
	{Key: "talk", Reply: handoff()},
	{Key: "agent", Reply: handoff()},
	{Key: "representative", Reply: handoff()},
	{Key: "person", Reply: handoff()},
	{Key: "help", Reply: direct("I can help with basics, but if you're stuck, type 'admin' to chat with a person.")},
	{Key: "speak", Reply: handoff()},
	{Key: "connect", Reply: handoff()},

	// Platform
	{Key: "website", Reply: direct("Our website offers course searches, university details, and direct contact with counselors.")},
	{Key: "register", Reply: direct("No registration needed! Just browse and connect with us.")},
	{Key: "features", Reply: direct("You can search courses, view blogs, and chat with us live!")},
}
