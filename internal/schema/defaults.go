package schema

// Default returns the biomedical knowledge graph the service ships with.
func Default() *Descriptor {
	d, err := New(
		Triple{Source: "Gene", Relationship: "ASSOCIATED_WITH", Target: "Disease"},
		Triple{Source: "Gene", Relationship: "REGULATES", Target: "Protein"},
		Triple{Source: "Disease", Relationship: "HAS_SYMPTOM", Target: "Symptom"},
		Triple{Source: "Gene", Relationship: "INTERACTS_WITH", Target: "Gene"},
		Triple{Source: "Drug", Relationship: "TREATS", Target: "Disease"},
		Triple{Source: "Person", Relationship: "HAS_CONDITION", Target: "Disease"},
	)
	if err != nil {
		panic(err)
	}
	return d
}

// DefaultExamples returns the few-shot examples matching Default.
func DefaultExamples() []Example {
	return []Example{
		{
			Question: "Find genes related to Lung Cancer.",
			Query:    `MATCH (g:Gene)-[:ASSOCIATED_WITH]->(d:Disease {name: "Lung Cancer"}) RETURN g.name;`,
		},
		{
			Question: `Find all relationships for the gene "APOE".`,
			Query:    `MATCH (g:Gene {name: "APOE"})-[r]->(n) RETURN type(r), labels(n), n.name;`,
		},
		{
			Question: `Find diseases related to the gene "TP53".`,
			Query:    `MATCH (g:Gene {name: "TP53"})-[:ASSOCIATED_WITH]->(d:Disease) RETURN d.name;`,
		},
		{
			Question: "Find drugs that treat Alzheimer's.",
			Query:    `MATCH (dr:Drug)-[:TREATS]->(d:Disease {name: "Alzheimer's"}) RETURN dr.name;`,
		},
	}
}
