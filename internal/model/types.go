package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Client is one immutable demand point on the map.
type Client struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Coordinate is a decoded antenna position.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// UnsetFitness marks an individual whose genes changed since the last
// evaluation.
const UnsetFitness = -1

// Individual is a fixed-length binary chromosome plus its cached fitness.
type Individual struct {
	Genes   []byte `json:"genes"`
	Fitness int    `json:"fitness"`
	Valid   bool   `json:"valid"`
}

// NewIndividual wraps genes in an unevaluated individual.
func NewIndividual(genes []byte) Individual {
	return Individual{Genes: genes, Fitness: UnsetFitness}
}

// Clone deep-copies the gene buffer. Elite survivors and the best-ever
// record must never share a gene slice with population members that may
// still be mutated.
func (ind Individual) Clone() Individual {
	genes := make([]byte, len(ind.Genes))
	copy(genes, ind.Genes)
	return Individual{Genes: genes, Fitness: ind.Fitness, Valid: ind.Valid}
}

// Bitstring renders the genes as a compact 0/1 string.
func (ind Individual) Bitstring() string {
	buf := make([]byte, len(ind.Genes))
	for i, g := range ind.Genes {
		buf[i] = '0' + g
	}
	return string(buf)
}

// ProblemSpec echoes the problem parameters a run was configured with.
type ProblemSpec struct {
	NumAntennas    int     `json:"num_antennas"`
	BitsPerCoord   int     `json:"bits_per_coord"`
	MapWidth       int     `json:"map_width"`
	MapHeight      int     `json:"map_height"`
	CoverageRadius float64 `json:"coverage_radius"`
}

// EngineSpec echoes the GA parameters a run was configured with.
type EngineSpec struct {
	PopulationSize         int     `json:"population_size"`
	MaxGenerations         int     `json:"max_generations"`
	ElitismCount           int     `json:"elitism_count"`
	CrossoverRate          float64 `json:"crossover_rate"`
	MutationRate           float64 `json:"mutation_rate"`
	MaxStagnantGenerations int     `json:"max_stagnant_generations"`
	Seed                   int64   `json:"seed"`
}

// RunRecord is the persisted outcome of one optimization run.
type RunRecord struct {
	VersionedRecord
	ID             string       `json:"id"`
	CreatedAtUTC   string       `json:"created_at_utc"`
	ClientCount    int          `json:"client_count"`
	Problem        ProblemSpec  `json:"problem"`
	Engine         EngineSpec   `json:"engine"`
	BestFitness    int          `json:"best_fitness"`
	BestGenes      string       `json:"best_genes"`
	Antennas       []Coordinate `json:"antennas"`
	GenerationsRun int          `json:"generations_run"`
}

// GenerationStats is one generation's observable progress snapshot.
type GenerationStats struct {
	Generation  int     `json:"generation"`
	BestFitness int     `json:"best_fitness"`
	MeanFitness float64 `json:"mean_fitness"`
	Stagnant    int     `json:"stagnant"`
}
