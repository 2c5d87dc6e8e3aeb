package builtins

// JavaUtilInitializer seeds the collection framework.
type JavaUtilInitializer struct{}

func (j *JavaUtilInitializer) Name() string  { return "java.util" }
func (j *JavaUtilInitializer) Priority() int { return PriorityJavaUtil }

var javaUtilStubs = []Stub{
	{Header: "public interface Iterator<E>", Members: []string{
		"boolean hasNext()",
		"E next()",
		"default void remove()",
	}},
	{Header: "public interface Collection<E> extends Iterable<E>", Members: []string{
		"int size()",
		"boolean isEmpty()",
		"boolean contains(Object)",
		"Iterator<E> iterator()",
		"Object[] toArray()",
		"<T> T[] toArray(T[])",
		"boolean add(E)",
		"boolean remove(Object)",
		"boolean addAll(Collection<? extends E>)",
		"void clear()",
		"default boolean removeIf(Predicate<? super E>)",
	}},
	{Header: "public interface List<E> extends Collection<E>", Members: []string{
		"E get(int)",
		"E set(int, E)",
		"void add(int, E)",
		"E remove(int)",
		"int indexOf(Object)",
		"List<E> subList(int, int)",
		"default void sort(Comparator<? super E>)",
		"static <E> List<E> of()",
		"static <E> List<E> of(E)",
		"static <E> List<E> of(E...)",
	}},
	{Header: "public interface Set<E> extends Collection<E>", Members: []string{
		"static <E> Set<E> of(E...)",
	}},
	{Header: "public interface Queue<E> extends Collection<E>", Members: []string{
		"boolean offer(E)",
		"E poll()",
		"E peek()",
	}},
	{Header: "public abstract class AbstractCollection<E> implements Collection<E>", Members: []string{
		"protected AbstractCollection()",
		"public abstract Iterator<E> iterator()",
		"public abstract int size()",
		"public boolean isEmpty()",
		"public boolean contains(Object)",
		"public Object[] toArray()",
		"public <T> T[] toArray(T[])",
		"public boolean add(E)",
		"public boolean remove(Object)",
		"public boolean addAll(Collection<? extends E>)",
		"public void clear()",
		"public String toString()",
	}},
	{Header: "public abstract class AbstractList<E> extends AbstractCollection<E> implements List<E>", Members: []string{
		"protected AbstractList()",
		"public abstract E get(int)",
		"public E set(int, E)",
		"public void add(int, E)",
		"public E remove(int)",
		"public int indexOf(Object)",
		"public Iterator<E> iterator()",
		"public List<E> subList(int, int)",
		"public boolean equals(Object)",
		"public int hashCode()",
	}},
	{Header: "public class ArrayList<E> extends AbstractList<E> implements List<E>, Cloneable, Serializable", Members: []string{
		"public ArrayList()",
		"public ArrayList(int)",
		"public ArrayList(Collection<? extends E>)",
		"public E get(int)",
		"public int size()",
		"public boolean add(E)",
	}},
	{Header: "public class LinkedList<E> extends AbstractList<E> implements List<E>, Queue<E>, Cloneable, Serializable", Members: []string{
		"public LinkedList()",
		"public E get(int)",
		"public int size()",
		"public boolean offer(E)",
		"public E poll()",
		"public E peek()",
	}},
	{Header: "public abstract class AbstractSet<E> extends AbstractCollection<E> implements Set<E>", Members: []string{
		"protected AbstractSet()",
	}},
	{Header: "public class HashSet<E> extends AbstractSet<E> implements Set<E>, Cloneable, Serializable", Members: []string{
		"public HashSet()",
		"public HashSet(Collection<? extends E>)",
		"public Iterator<E> iterator()",
		"public int size()",
	}},
	{Header: "public interface Map<K, V>", Members: []string{
		"int size()",
		"boolean isEmpty()",
		"V get(Object)",
		"V put(K, V)",
		"V remove(Object)",
		"boolean containsKey(Object)",
		"Set<K> keySet()",
		"Collection<V> values()",
		"Set<Map.Entry<K, V>> entrySet()",
		"default V getOrDefault(Object, V)",
		"static <K, V> Map<K, V> of()",
	}},
	{Header: "public interface Entry<K, V>", Outer: "Map", Members: []string{
		"K getKey()",
		"V getValue()",
		"V setValue(V)",
	}},
	{Header: "public abstract class AbstractMap<K, V> implements Map<K, V>", Members: []string{
		"protected AbstractMap()",
		"public abstract Set<Map.Entry<K, V>> entrySet()",
		"public int size()",
		"public boolean isEmpty()",
		"public V get(Object)",
		"public V put(K, V)",
		"public V remove(Object)",
		"public boolean containsKey(Object)",
		"public Set<K> keySet()",
		"public Collection<V> values()",
	}},
	{Header: "public class HashMap<K, V> extends AbstractMap<K, V> implements Map<K, V>, Cloneable, Serializable", Members: []string{
		"public HashMap()",
		"public HashMap(Map<? extends K, ? extends V>)",
		"public Set<Map.Entry<K, V>> entrySet()",
	}},
	{Header: "public interface Comparator<T>", Members: []string{
		"int compare(T, T)",
		"default Comparator<T> reversed()",
		"static <T extends Comparable<? super T>> Comparator<T> naturalOrder()",
		"static <T, U extends Comparable<? super U>> Comparator<T> comparing(Function<? super T, ? extends U>)",
	}},
	{Header: "public class Collections", Members: []string{
		"public static <T> List<T> emptyList()",
		"public static <T> Set<T> emptySet()",
		"public static <K, V> Map<K, V> emptyMap()",
		"public static <T> List<T> singletonList(T)",
		"public static <T> List<T> unmodifiableList(List<? extends T>)",
		"public static <T extends Comparable<? super T>> void sort(List<T>)",
		"public static <T> void sort(List<T>, Comparator<? super T>)",
		"public static <T extends Object & Comparable<? super T>> T max(Collection<? extends T>)",
		"public static <T> boolean addAll(Collection<? super T>, T...)",
		"public static void reverse(List<?>)",
	}},
	{Header: "public class Arrays", Members: []string{
		"public static <T> List<T> asList(T...)",
		"public static void sort(int[])",
		"public static void sort(Object[])",
		"public static <T> void sort(T[], Comparator<? super T>)",
		"public static String toString(Object[])",
		"public static <T> T[] copyOf(T[], int)",
	}},
	{Header: "public final class Objects", Members: []string{
		"public static boolean equals(Object, Object)",
		"public static int hash(Object...)",
		"public static <T> T requireNonNull(T)",
		"public static <T> T requireNonNull(T, String)",
		"public static <T> T requireNonNullElse(T, T)",
	}},
	{Header: "public final class Optional<T>", Members: []string{
		"public static <T> Optional<T> empty()",
		"public static <T> Optional<T> of(T)",
		"public static <T> Optional<T> ofNullable(T)",
		"public T get()",
		"public boolean isPresent()",
		"public T orElse(T)",
		"public <U> Optional<U> map(Function<? super T, ? extends U>)",
	}},
	{Header: "public class NoSuchElementException extends RuntimeException", Members: []string{
		"public NoSuchElementException()",
	}},
	{Header: "public class ConcurrentModificationException extends RuntimeException", Members: []string{
		"public ConcurrentModificationException()",
	}},
}

func (j *JavaUtilInitializer) DeclareTypes(ctx *TypeContext) error {
	return ctx.declareStubs("java.util", javaUtilStubs)
}

func (j *JavaUtilInitializer) InitMembers(ctx *TypeContext) error {
	return ctx.completeStubs("java.util", javaUtilStubs)
}
